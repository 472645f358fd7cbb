package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/metrics"
	"github.com/carson-networks/pointlog/internal/pointlog"
)

const exampleLog = `created_at_utc,student_name,booth_name,delta
2024-05-01T10:00:00, Alice, BoothA, 10
2024-05-01T10:30:00, Bob,   BoothB, -5
2024-05-01T11:15:00, Alice, BoothA, -3
2024-05-01T12:00:00, ,      ,
`

func newTestService(t *testing.T) (*ReportService, *metrics.Recorder) {
	t.Helper()
	logger := logrus.New()
	logger.Out = io.Discard
	recorder := metrics.NewRecorder()
	svc := NewReportService(logger, recorder, AnalyzeOptions{})
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	return svc, recorder
}

func scrape(t *testing.T, recorder *metrics.Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestReportService_Analyze(t *testing.T) {
	svc, recorder := newTestService(t)

	report, err := svc.Analyze(context.Background(), strings.NewReader(exampleLog), AnalyzeOptions{})
	require.NoError(t, err)

	assert.False(t, report.RunID.IsNil())
	assert.Equal(t, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), report.AnalyzedAt)
	assert.Equal(t, analytics.Summary{Transactions: 3, Students: 2, Booths: 2}, report.Summary)
	assert.Equal(t, "BoothB", report.HeadlineBooth)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(2)))

	body := scrape(t, recorder)
	assert.Contains(t, body, `pointlog_reports_total{status="ok"} 1`)
	assert.Contains(t, body, "pointlog_rows_read_total 4")
	assert.Contains(t, body, "pointlog_rows_dropped_total 1")
}

func TestReportService_Analyze_PreviewOption(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.Analyze(context.Background(), strings.NewReader(exampleLog), AnalyzeOptions{PreviewRows: 1})
	require.NoError(t, err)

	require.Len(t, report.Preview, 1)
	assert.Equal(t, "Alice", report.Preview[0].Student)
}

func TestReportService_Analyze_IndependentRuns(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Analyze(context.Background(), strings.NewReader(exampleLog), AnalyzeOptions{})
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), strings.NewReader(exampleLog), AnalyzeOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	first.RunID = second.RunID
	assert.Equal(t, first, second)
}

func TestReportService_Analyze_Errors(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		target interface{}
		status string
	}{
		{
			name:   "missing column",
			input:  "created_at_utc,student_name,delta\n2024-05-01T10:00:00,Alice,1\n",
			target: new(*pointlog.ParseError),
			status: metrics.StatusParseError,
		},
		{
			name:   "bad timestamp",
			input:  "created_at_utc,student_name,booth_name,delta\nyesterday,Alice,BoothA,1\n",
			target: new(*pointlog.TimestampParseError),
			status: metrics.StatusTimestampError,
		},
		{
			name:   "only empty rows",
			input:  "created_at_utc,student_name,booth_name,delta\n2024-05-01T10:00:00,,,\n",
			target: new(*pointlog.EmptyInputError),
			status: metrics.StatusEmpty,
		},
		{
			name:   "header only",
			input:  "created_at_utc,student_name,booth_name,delta\n",
			target: new(*pointlog.EmptyInputError),
			status: metrics.StatusEmpty,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, recorder := newTestService(t)

			report, err := svc.Analyze(context.Background(), strings.NewReader(tc.input), AnalyzeOptions{})
			assert.Nil(t, report)
			require.Error(t, err)
			assert.ErrorAs(t, err, tc.target)
			assert.Contains(t, scrape(t, recorder), `pointlog_reports_total{status="`+tc.status+`"} 1`)
		})
	}
}

func TestReportService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	report, err := svc.Analyze(context.Background(), strings.NewReader(exampleLog), AnalyzeOptions{})
	require.NoError(t, err)

	data, err := svc.Export(context.Background(), report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Booths")
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, metrics.StatusOK, runStatus(nil))
	assert.Equal(t, metrics.StatusError, runStatus(io.ErrUnexpectedEOF))
	assert.Equal(t, metrics.StatusParseError, runStatus(&pointlog.ParseError{Reason: "x"}))
}
