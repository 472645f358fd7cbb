package actions

import (
	"context"
	"io"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/service"
)

// Analyzer is the part of the report service the actions need.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, opts service.AnalyzeOptions) (*analytics.Report, error)
	Export(ctx context.Context, report *analytics.Report) ([]byte, error)
}

// AnalyzeUpload runs one uploaded file through the pipeline. Report is set on success.
type AnalyzeUpload struct {
	Analyzer Analyzer
	Body     io.Reader
	Options  service.AnalyzeOptions

	Report *analytics.Report
}

func (a *AnalyzeUpload) Perform(ctx context.Context) error {
	report, err := a.Analyzer.Analyze(ctx, a.Body, a.Options)
	if err != nil {
		return err
	}

	a.Report = report
	return nil
}

// ExportUpload analyzes a file and renders the result as a workbook.
type ExportUpload struct {
	AnalyzeUpload

	Workbook []byte
}

func (e *ExportUpload) Perform(ctx context.Context) error {
	if err := e.AnalyzeUpload.Perform(ctx); err != nil {
		return err
	}

	workbook, err := e.Analyzer.Export(ctx, e.Report)
	if err != nil {
		return err
	}

	e.Workbook = workbook
	return nil
}
