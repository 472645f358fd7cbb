package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/pointlog/internal/pointlog"
)

// FlowPoint is one entry of the cumulative point-flow series.
type FlowPoint struct {
	At    time.Time
	Total decimal.Decimal
}

// BoothTotal is the net delta recorded at one booth.
type BoothTotal struct {
	Booth string
	Total decimal.Decimal
}

// HourTotal is the net delta recorded during one hour of the day, across all dates.
type HourTotal struct {
	Hour  int
	Total decimal.Decimal
}

// Summary holds the headline counts of a table.
type Summary struct {
	Transactions int
	Students     int
	Booths       int
}

// CumulativeFlow returns the running sum of deltas in table order. Rows with an empty
// delta add nothing but still produce a point.
func CumulativeFlow(table *pointlog.Table) []FlowPoint {
	flow := make([]FlowPoint, 0, table.Len())
	running := decimal.Zero
	for _, rec := range records(table) {
		running = running.Add(rec.Amount())
		flow = append(flow, FlowPoint{At: rec.CreatedAt, Total: running})
	}
	return flow
}

// BoothTotals sums deltas per booth and orders the result ascending by total. Booths are
// visited in name order before the stable sort, so equal totals are ordered by name.
// Rows without a booth name are grouped under "".
func BoothTotals(table *pointlog.Table) []BoothTotal {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records(table) {
		sums[rec.Booth] = sums[rec.Booth].Add(rec.Amount())
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	totals := make([]BoothTotal, len(names))
	for i, name := range names {
		totals[i] = BoothTotal{Booth: name, Total: sums[name]}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.LessThan(totals[j].Total)
	})
	return totals
}

// HourlyTotals sums deltas by hour of day (0-23, UTC). Hours without rows are absent.
func HourlyTotals(table *pointlog.Table) []HourTotal {
	var sums [24]decimal.Decimal
	var seen [24]bool
	for _, rec := range records(table) {
		hour := rec.CreatedAt.UTC().Hour()
		sums[hour] = sums[hour].Add(rec.Amount())
		seen[hour] = true
	}

	var totals []HourTotal
	for hour := range sums {
		if seen[hour] {
			totals = append(totals, HourTotal{Hour: hour, Total: sums[hour]})
		}
	}
	return totals
}

// Summarize counts rows and distinct non-empty student and booth names.
func Summarize(table *pointlog.Table) Summary {
	students := make(map[string]struct{})
	booths := make(map[string]struct{})
	for _, rec := range records(table) {
		if rec.Student != "" {
			students[rec.Student] = struct{}{}
		}
		if rec.Booth != "" {
			booths[rec.Booth] = struct{}{}
		}
	}
	return Summary{
		Transactions: table.Len(),
		Students:     len(students),
		Booths:       len(booths),
	}
}

// HeadlineBooth returns the named booth with the lowest net total: the first entry of the
// ascending booth totals whose name is not empty. Which booth wins a tie is
// implementation-defined.
func HeadlineBooth(totals []BoothTotal) (string, bool) {
	for _, total := range totals {
		if total.Booth != "" {
			return total.Booth, true
		}
	}
	return "", false
}

// NetTotal sums every delta in the table.
func NetTotal(table *pointlog.Table) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records(table) {
		total = total.Add(rec.Amount())
	}
	return total
}

func records(table *pointlog.Table) []pointlog.Record {
	if table == nil {
		return nil
	}
	return table.Records
}
