package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/exporter"
	"github.com/carson-networks/pointlog/internal/metrics"
	"github.com/carson-networks/pointlog/internal/pointlog"
)

const tracerName = "github.com/carson-networks/pointlog/internal/service"

// AnalyzeOptions tunes a single run. Zero fields fall back to the service defaults.
type AnalyzeOptions struct {
	PreviewRows int
	Encoding    string
}

// ReportService runs uploaded point logs through load, clean and aggregate.
type ReportService struct {
	logger   *logrus.Logger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	defaults AnalyzeOptions
	now      func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(logger *logrus.Logger, recorder *metrics.Recorder, defaults AnalyzeOptions) *ReportService {
	if defaults.PreviewRows <= 0 {
		defaults.PreviewRows = analytics.DefaultPreviewRows
	}
	return &ReportService{
		logger:   logger,
		metrics:  recorder,
		tracer:   otel.Tracer(tracerName),
		defaults: defaults,
		now:      time.Now,
	}
}

// Analyze loads, cleans and aggregates one file. Nothing is kept between calls.
func (s *ReportService) Analyze(ctx context.Context, r io.Reader, opts AnalyzeOptions) (*analytics.Report, error) {
	start := s.now()
	opts = s.withDefaults(opts)

	runID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	log := s.logger.WithField("runID", runID.String())

	ctx, span := s.tracer.Start(ctx, "pointlog.analyze", trace.WithAttributes(
		attribute.String("pointlog.run_id", runID.String()),
	))
	defer span.End()

	report, err := s.analyze(ctx, r, opts, log)
	s.metrics.RecordRun(runStatus(err), s.now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Debug("ReportService.Analyze.failed")
		return nil, err
	}

	report.RunID = runID
	report.AnalyzedAt = start.UTC()

	log.WithFields(logrus.Fields{
		"transactions":  report.Summary.Transactions,
		"students":      report.Summary.Students,
		"booths":        report.Summary.Booths,
		"headlineBooth": report.HeadlineBooth,
	}).Info("ReportService.Analyze.complete")
	return report, nil
}

func (s *ReportService) analyze(ctx context.Context, r io.Reader, opts AnalyzeOptions, log *logrus.Entry) (*analytics.Report, error) {
	_, loadSpan := s.tracer.Start(ctx, "pointlog.load")
	raw, err := pointlog.Load(r, pointlog.LoadOptions{Encoding: opts.Encoding})
	endSpan(loadSpan, err)
	if err != nil {
		return nil, err
	}

	_, cleanSpan := s.tracer.Start(ctx, "pointlog.clean")
	table, err := pointlog.Clean(raw)
	endSpan(cleanSpan, err)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRows(len(raw.Rows), table.Dropped)
	log.WithFields(logrus.Fields{
		"rawRows":     len(raw.Rows),
		"droppedRows": table.Dropped,
		"rows":        table.Len(),
	}).Debug("ReportService.Analyze.cleaned")

	if table.Len() == 0 {
		return nil, &pointlog.EmptyInputError{RawRows: len(raw.Rows)}
	}

	_, buildSpan := s.tracer.Start(ctx, "analytics.build", trace.WithAttributes(
		attribute.Int("pointlog.rows", table.Len()),
	))
	report := analytics.Build(table, opts.PreviewRows)
	buildSpan.End()

	return report, nil
}

// Export renders a report as an XLSX workbook.
func (s *ReportService) Export(ctx context.Context, report *analytics.Report) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "exporter.workbook")
	defer span.End()

	var buf bytes.Buffer
	if err := exporter.WriteReport(&buf, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("export report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) withDefaults(opts AnalyzeOptions) AnalyzeOptions {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = s.defaults.PreviewRows
	}
	if opts.Encoding == "" {
		opts.Encoding = s.defaults.Encoding
	}
	return opts
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func runStatus(err error) string {
	var (
		parseErr     *pointlog.ParseError
		timestampErr *pointlog.TimestampParseError
		emptyErr     *pointlog.EmptyInputError
	)
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.As(err, &parseErr):
		return metrics.StatusParseError
	case errors.As(err, &timestampErr):
		return metrics.StatusTimestampError
	case errors.As(err, &emptyErr):
		return metrics.StatusEmpty
	default:
		return metrics.StatusError
	}
}
