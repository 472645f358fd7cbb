package analytics

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/pointlog/internal/pointlog"
)

// DefaultPreviewRows matches the head() preview shown after upload.
const DefaultPreviewRows = 5

// Report bundles every view computed from one cleaned table.
type Report struct {
	RunID      uuid.UUID
	AnalyzedAt time.Time

	Summary       Summary
	Preview       []pointlog.Record
	Flow          []FlowPoint
	Booths        []BoothTotal
	Hourly        []HourTotal
	Total         decimal.Decimal
	HeadlineBooth string
}

// Build computes all views eagerly. The table is read, never modified.
func Build(table *pointlog.Table, previewRows int) *Report {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	recs := records(table)
	if previewRows > len(recs) {
		previewRows = len(recs)
	}

	booths := BoothTotals(table)
	report := &Report{
		Summary: Summarize(table),
		Preview: append([]pointlog.Record(nil), recs[:previewRows]...),
		Flow:    CumulativeFlow(table),
		Booths:  booths,
		Hourly:  HourlyTotals(table),
		Total:   NetTotal(table),
	}
	if booth, ok := HeadlineBooth(booths); ok {
		report.HeadlineBooth = booth
	}
	return report
}
