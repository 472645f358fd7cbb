package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/pointlog/internal/logging"
	"github.com/carson-networks/pointlog/internal/operator/actions"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportReportOutput streams the workbook back to the caller.
type ExportReportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ExportReportHandler handles POST /v1/report/xlsx.
type ExportReportHandler struct {
	Operator     actionProcessor
	Analyzer     actions.Analyzer
	MaxBodyBytes int64
}

// NewExportReportHandler creates a new ExportReportHandler.
func NewExportReportHandler(op actionProcessor, analyzer actions.Analyzer, maxBodyBytes int64) *ExportReportHandler {
	return &ExportReportHandler{Operator: op, Analyzer: analyzer, MaxBodyBytes: maxBodyBytes}
}

// Register registers the workbook export endpoint with the Huma API.
func (h *ExportReportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:  "export-report",
		Method:       http.MethodPost,
		Path:         "/v1/report/xlsx",
		Summary:      "Export point log workbook",
		Description:  "Analyzes an uploaded point log and returns the report as an XLSX workbook.",
		Tags:         []string{"Reports"},
		MaxBodyBytes: h.MaxBodyBytes,
	}, h.handle)
}

func (h *ExportReportHandler) handle(ctx context.Context, input *AnalyzeReportInput) (*ExportReportOutput, error) {
	logData := logging.GetLogData(ctx)

	action := &actions.ExportUpload{
		AnalyzeUpload: actions.AnalyzeUpload{
			Analyzer: h.Analyzer,
			Body:     bytes.NewReader(bytes.Clone(input.RawBody)),
			Options:  parseAnalyzeOptions(input.Preview, input.Encoding),
		},
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("uploadBytes", len(input.RawBody))
		stopTimer = logData.AddTiming("exportMs")
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
		logData.AddData("workbookBytes", len(action.Workbook))
	}

	return &ExportReportOutput{
		ContentType:        xlsxContentType,
		ContentDisposition: fmt.Sprintf(`attachment; filename="pointlog-%s.xlsx"`, action.Report.RunID),
		Body:               action.Workbook,
	}, nil
}
