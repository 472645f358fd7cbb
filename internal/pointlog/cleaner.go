package pointlog

import (
	"errors"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// Clean drops empty rows, parses timestamps and deltas, and stable-sorts the surviving
// records by created_at_utc. The raw table is left untouched.
func Clean(raw *RawTable) (*Table, error) {
	table := &Table{}
	if raw == nil {
		return table, nil
	}

	table.Records = make([]Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if row.IsEmpty() {
			table.Dropped++
			continue
		}

		createdAt, err := ParseTimestamp(row.CreatedAt)
		if err != nil {
			return nil, &TimestampParseError{Row: row.Row, Line: row.Line, Value: row.CreatedAt, Err: err}
		}

		var delta decimal.NullDecimal
		if row.Delta != "" {
			d, err := decimal.NewFromString(row.Delta)
			if err != nil {
				return nil, &ParseError{Row: row.Row, Line: row.Line, Column: ColumnDelta, Err: err}
			}
			delta = decimal.NewNullDecimal(d)
		}

		table.Records = append(table.Records, Record{
			Row:       row.Row,
			Line:      row.Line,
			CreatedAt: createdAt,
			Student:   row.Student,
			Booth:     row.Booth,
			Delta:     delta,
		})
	}

	sort.SliceStable(table.Records, func(i, j int) bool {
		return table.Records[i].CreatedAt.Before(table.Records[j].CreatedAt)
	})

	return table, nil
}

// ParseTimestamp reads a created_at_utc cell. Values without an offset are taken as UTC;
// values with one are converted to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errEmptyTimestamp
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

var errEmptyTimestamp = errors.New("empty timestamp")
