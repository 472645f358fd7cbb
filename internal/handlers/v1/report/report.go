package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/exporter"
	"github.com/carson-networks/pointlog/internal/pointlog"
)

// Summary is the API response model for the headline counts.
type Summary struct {
	Transactions int `json:"transactions" doc:"Rows that survived cleaning"`
	Students     int `json:"students" doc:"Distinct non-empty student names"`
	Booths       int `json:"booths" doc:"Distinct non-empty booth names"`
}

// PreviewRow is one cleaned row in file order after sorting.
type PreviewRow struct {
	CreatedAtUTC string `json:"createdAtUtc" doc:"RFC3339 timestamp"`
	StudentName  string `json:"studentName"`
	BoothName    string `json:"boothName"`
	Delta        string `json:"delta" doc:"Decimal delta, empty when the cell was empty"`
}

// FlowPoint is one step of the cumulative point flow.
type FlowPoint struct {
	CreatedAtUTC string `json:"createdAtUtc" doc:"RFC3339 timestamp"`
	Total        string `json:"total" doc:"Decimal running total"`
}

// BoothTotal is the net delta at one booth.
type BoothTotal struct {
	Booth string `json:"booth"`
	Total string `json:"total" doc:"Decimal net delta"`
}

// HourTotal is the net delta for one hour of the day.
type HourTotal struct {
	Hour  int    `json:"hour" minimum:"0" maximum:"23"`
	Total string `json:"total" doc:"Decimal net delta"`
}

// Report is the API response model for an analysis run.
type Report struct {
	RunID         string       `json:"runID" doc:"Run UUID"`
	AnalyzedAt    string       `json:"analyzedAt" doc:"RFC3339 time the run started"`
	Summary       Summary      `json:"summary"`
	Preview       []PreviewRow `json:"preview"`
	Flow          []FlowPoint  `json:"flow"`
	Booths        []BoothTotal `json:"booths" doc:"Ascending by total"`
	Hourly        []HourTotal  `json:"hourly" doc:"Ascending by hour, absent hours omitted"`
	HeadlineBooth string       `json:"headlineBooth"`
	Headline      string       `json:"headline"`
	Total         string       `json:"total" doc:"Decimal net delta of the whole file"`
}

func toReport(r *analytics.Report) Report {
	resp := Report{
		RunID:         r.RunID.String(),
		AnalyzedAt:    r.AnalyzedAt.UTC().Format(time.RFC3339),
		Summary:       Summary(r.Summary),
		Preview:       make([]PreviewRow, len(r.Preview)),
		Flow:          make([]FlowPoint, len(r.Flow)),
		Booths:        make([]BoothTotal, len(r.Booths)),
		Hourly:        make([]HourTotal, len(r.Hourly)),
		HeadlineBooth: r.HeadlineBooth,
		Headline:      exporter.Headline(r.HeadlineBooth),
		Total:         r.Total.String(),
	}

	for i, rec := range r.Preview {
		row := PreviewRow{
			CreatedAtUTC: rec.CreatedAt.UTC().Format(time.RFC3339),
			StudentName:  rec.Student,
			BoothName:    rec.Booth,
		}
		if rec.Delta.Valid {
			row.Delta = rec.Delta.Decimal.String()
		}
		resp.Preview[i] = row
	}
	for i, p := range r.Flow {
		resp.Flow[i] = FlowPoint{CreatedAtUTC: p.At.UTC().Format(time.RFC3339), Total: p.Total.String()}
	}
	for i, b := range r.Booths {
		resp.Booths[i] = BoothTotal{Booth: b.Booth, Total: b.Total.String()}
	}
	for i, h := range r.Hourly {
		resp.Hourly[i] = HourTotal{Hour: h.Hour, Total: h.Total.String()}
	}

	return resp
}

// toHTTPError maps pipeline errors onto status codes.
func toHTTPError(err error) error {
	var (
		parseErr     *pointlog.ParseError
		timestampErr *pointlog.TimestampParseError
		emptyErr     *pointlog.EmptyInputError
		statusErr    huma.StatusError
	)
	switch {
	case errors.As(err, &parseErr):
		return huma.NewError(http.StatusBadRequest, "unreadable point log", err)
	case errors.As(err, &timestampErr):
		return huma.NewError(http.StatusBadRequest, "invalid created_at_utc", err)
	case errors.As(err, &emptyErr):
		return huma.NewError(http.StatusUnprocessableEntity, "no transactions in point log", err)
	case errors.As(err, &statusErr):
		return err
	default:
		return huma.NewError(http.StatusInternalServerError, "failed to analyze point log", err)
	}
}
