package report

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/pointlog/internal/logging"
	"github.com/carson-networks/pointlog/internal/operator/actions"
	"github.com/carson-networks/pointlog/internal/service"
)

// AnalyzeReportInput is the Huma input for analyzing an uploaded point log.
type AnalyzeReportInput struct {
	Preview  int    `query:"preview" minimum:"1" maximum:"100" doc:"Number of preview rows, defaults to the server setting"`
	Encoding string `query:"encoding" enum:"utf-8,euc-kr" doc:"Text encoding of the upload, defaults to the server setting"`
	RawBody  []byte `contentType:"text/csv"`
}

// AnalyzeReportOutput is the Huma output for an analysis run.
type AnalyzeReportOutput struct {
	Body Report
}

// actionProcessor runs actions on the worker pool.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// AnalyzeReportHandler handles POST /v1/report.
type AnalyzeReportHandler struct {
	Operator     actionProcessor
	Analyzer     actions.Analyzer
	MaxBodyBytes int64
}

// NewAnalyzeReportHandler creates a new AnalyzeReportHandler.
func NewAnalyzeReportHandler(op actionProcessor, analyzer actions.Analyzer, maxBodyBytes int64) *AnalyzeReportHandler {
	return &AnalyzeReportHandler{Operator: op, Analyzer: analyzer, MaxBodyBytes: maxBodyBytes}
}

// Register registers the analyze endpoint with the Huma API.
func (h *AnalyzeReportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:  "analyze-report",
		Method:       http.MethodPost,
		Path:         "/v1/report",
		Summary:      "Analyze point log",
		Description:  "Cleans an uploaded point log and returns its summary, flow, booth and hourly totals.",
		Tags:         []string{"Reports"},
		MaxBodyBytes: h.MaxBodyBytes,
	}, h.handle)
}

func parseAnalyzeOptions(preview int, encoding string) service.AnalyzeOptions {
	return service.AnalyzeOptions{PreviewRows: preview, Encoding: encoding}
}

func (h *AnalyzeReportHandler) handle(ctx context.Context, input *AnalyzeReportInput) (*AnalyzeReportOutput, error) {
	logData := logging.GetLogData(ctx)

	// RawBody is reused by huma once the handler returns, and a worker may still be reading.
	action := &actions.AnalyzeUpload{
		Analyzer: h.Analyzer,
		Body:     bytes.NewReader(bytes.Clone(input.RawBody)),
		Options:  parseAnalyzeOptions(input.Preview, input.Encoding),
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("uploadBytes", len(input.RawBody))
		stopTimer = logData.AddTiming("analyzeMs")
	}
	err := h.Operator.Process(ctx, action)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, toHTTPError(err)
	}

	if logData != nil {
		logData.AddData("runID", action.Report.RunID.String())
		logData.AddData("transactions", action.Report.Summary.Transactions)
	}

	return &AnalyzeReportOutput{Body: toReport(action.Report)}, nil
}
