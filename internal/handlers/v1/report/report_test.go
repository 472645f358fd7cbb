package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/operator/actions"
	"github.com/carson-networks/pointlog/internal/pointlog"
	"github.com/carson-networks/pointlog/internal/service"
)

const csvHeader = "Content-Type: text/csv"

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, r io.Reader, opts service.AnalyzeOptions) (*analytics.Report, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, string(body), opts)
	report, _ := args.Get(0).(*analytics.Report)
	return report, args.Error(1)
}

func (m *mockAnalyzer) Export(ctx context.Context, report *analytics.Report) ([]byte, error) {
	args := m.Called(ctx, report)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// inlineProcessor runs actions on the calling goroutine.
type inlineProcessor struct{}

func (inlineProcessor) Process(ctx context.Context, action actions.IAction) error {
	return action.Perform(ctx)
}

func newTestAPI(t *testing.T, analyzer actions.Analyzer) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewAnalyzeReportHandler(inlineProcessor{}, analyzer, 0).Register(api)
	NewExportReportHandler(inlineProcessor{}, analyzer, 0).Register(api)
	return api
}

func sampleReport() *analytics.Report {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &analytics.Report{
		RunID:      uuid.Must(uuid.FromString("0b8f6a7e-3c1d-4c55-9d0f-3f1d2a6b7c8e")),
		AnalyzedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		Summary:    analytics.Summary{Transactions: 2, Students: 1, Booths: 1},
		Preview: []pointlog.Record{
			{CreatedAt: at, Student: "Alice", Booth: "BoothA", Delta: decimal.NewNullDecimal(decimal.RequireFromString("10.5"))},
			{CreatedAt: at.Add(time.Hour), Student: "Alice", Booth: "BoothA"},
		},
		Flow: []analytics.FlowPoint{
			{At: at, Total: decimal.RequireFromString("10.5")},
			{At: at.Add(time.Hour), Total: decimal.RequireFromString("10.5")},
		},
		Booths:        []analytics.BoothTotal{{Booth: "BoothA", Total: decimal.RequireFromString("10.5")}},
		Hourly:        []analytics.HourTotal{{Hour: 10, Total: decimal.RequireFromString("10.5")}},
		Total:         decimal.RequireFromString("10.5"),
		HeadlineBooth: "BoothA",
	}
}

func TestHTTP_AnalyzeReport_Success(t *testing.T) {
	analyzer := new(mockAnalyzer)
	analyzer.On("Analyze", mock.Anything, "csv-body", service.AnalyzeOptions{PreviewRows: 2}).
		Return(sampleReport(), nil)

	resp := newTestAPI(t, analyzer).Post("/v1/report?preview=2", csvHeader, strings.NewReader("csv-body"))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "0b8f6a7e-3c1d-4c55-9d0f-3f1d2a6b7c8e", body.RunID)
	assert.Equal(t, "2024-05-02T09:00:00Z", body.AnalyzedAt)
	assert.Equal(t, Summary{Transactions: 2, Students: 1, Booths: 1}, body.Summary)
	require.Len(t, body.Preview, 2)
	assert.Equal(t, "10.5", body.Preview[0].Delta)
	assert.Equal(t, "", body.Preview[1].Delta)
	assert.Equal(t, "2024-05-01T11:00:00Z", body.Flow[1].CreatedAtUTC)
	assert.Equal(t, []BoothTotal{{Booth: "BoothA", Total: "10.5"}}, body.Booths)
	assert.Equal(t, []HourTotal{{Hour: 10, Total: "10.5"}}, body.Hourly)
	assert.Equal(t, "BoothA", body.HeadlineBooth)
	assert.Equal(t, "Booth where the most points were spent: BoothA", body.Headline)
	assert.Equal(t, "10.5", body.Total)
	analyzer.AssertExpectations(t)
}

func TestHTTP_AnalyzeReport_EmptyViewsAreArrays(t *testing.T) {
	analyzer := new(mockAnalyzer)
	analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(&analytics.Report{}, nil)

	resp := newTestAPI(t, analyzer).Post("/v1/report", csvHeader, strings.NewReader("x"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"booths":[]`)
	assert.Contains(t, resp.Body.String(), `"hourly":[]`)
}

func TestHTTP_AnalyzeReport_PreviewOutOfRange(t *testing.T) {
	analyzer := new(mockAnalyzer)

	resp := newTestAPI(t, analyzer).Post("/v1/report?preview=101", csvHeader, strings.NewReader("x"))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTP_AnalyzeReport_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"parse error", &pointlog.ParseError{Missing: []string{pointlog.ColumnDelta}}, http.StatusBadRequest},
		{"timestamp error", &pointlog.TimestampParseError{Row: 2, Line: 3, Value: "soon"}, http.StatusBadRequest},
		{"empty input", &pointlog.EmptyInputError{RawRows: 1}, http.StatusUnprocessableEntity},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := new(mockAnalyzer)
			analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			resp := newTestAPI(t, analyzer).Post("/v1/report", csvHeader, strings.NewReader("x"))

			assert.Equal(t, tc.code, resp.Code)
			analyzer.AssertExpectations(t)
		})
	}
}

func TestHTTP_ExportReport_Success(t *testing.T) {
	report := sampleReport()
	analyzer := new(mockAnalyzer)
	analyzer.On("Analyze", mock.Anything, "csv-body", service.AnalyzeOptions{Encoding: "euc-kr"}).Return(report, nil)
	analyzer.On("Export", mock.Anything, report).Return([]byte("PK-workbook"), nil)

	resp := newTestAPI(t, analyzer).Post("/v1/report/xlsx?encoding=euc-kr", csvHeader, strings.NewReader("csv-body"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, xlsxContentType, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), report.RunID.String())
	assert.Equal(t, "PK-workbook", resp.Body.String())
	analyzer.AssertExpectations(t)
}

func TestHTTP_ExportReport_ParseError(t *testing.T) {
	analyzer := new(mockAnalyzer)
	analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, &pointlog.ParseError{Reason: "bad quote"})

	resp := newTestAPI(t, analyzer).Post("/v1/report/xlsx", csvHeader, strings.NewReader("x"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	analyzer.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

// detachedProcessor starts the action and returns when ctx is done, like the delegator
// does when a caller goes away while a worker is still busy.
type detachedProcessor struct{}

func (detachedProcessor) Process(ctx context.Context, action actions.IAction) error {
	go func() { _ = action.Perform(ctx) }()
	<-ctx.Done()
	return ctx.Err()
}

// slowAnalyzer blocks until released, then reports what it read.
type slowAnalyzer struct {
	started chan struct{}
	release chan struct{}
	seen    chan string
}

func newSlowAnalyzer() *slowAnalyzer {
	return &slowAnalyzer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		seen:    make(chan string, 1),
	}
}

func (a *slowAnalyzer) Analyze(_ context.Context, r io.Reader, _ service.AnalyzeOptions) (*analytics.Report, error) {
	close(a.started)
	<-a.release
	body, err := io.ReadAll(r)
	a.seen <- string(body)
	return &analytics.Report{}, err
}

func (a *slowAnalyzer) Export(context.Context, *analytics.Report) ([]byte, error) {
	return nil, nil
}

func TestHandlers_BodyOutlivesCancelledRequest(t *testing.T) {
	cases := map[string]func(actions.Analyzer) func(context.Context, *AnalyzeReportInput) error{
		"analyze": func(a actions.Analyzer) func(context.Context, *AnalyzeReportInput) error {
			h := NewAnalyzeReportHandler(detachedProcessor{}, a, 0)
			return func(ctx context.Context, in *AnalyzeReportInput) error {
				_, err := h.handle(ctx, in)
				return err
			}
		},
		"export": func(a actions.Analyzer) func(context.Context, *AnalyzeReportInput) error {
			h := NewExportReportHandler(detachedProcessor{}, a, 0)
			return func(ctx context.Context, in *AnalyzeReportInput) error {
				_, err := h.handle(ctx, in)
				return err
			}
		},
	}

	for name, newHandle := range cases {
		t.Run(name, func(t *testing.T) {
			analyzer := newSlowAnalyzer()
			handle := newHandle(analyzer)
			input := &AnalyzeReportInput{RawBody: []byte("created_at_utc,original")}

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- handle(ctx, input) }()

			<-analyzer.started
			cancel()
			assert.Error(t, <-done)

			// The request buffer is handed to the next request.
			copy(input.RawBody, "XXXXXXXXXXXXXXXXXXXXXXX")
			close(analyzer.release)

			select {
			case got := <-analyzer.seen:
				assert.Equal(t, "created_at_utc,original", got)
			case <-time.After(time.Second):
				t.Fatal("analyzer never finished")
			}
		})
	}
}
