package pointlog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Required column names.
const (
	ColumnCreatedAt = "created_at_utc"
	ColumnStudent   = "student_name"
	ColumnBooth     = "booth_name"
	ColumnDelta     = "delta"
)

// RequiredColumns lists the header names every input file must carry.
var RequiredColumns = []string{ColumnCreatedAt, ColumnStudent, ColumnBooth, ColumnDelta}

// RawRow holds the trimmed string cells of the required columns for one data row.
type RawRow struct {
	Row       int // 1-based data row index
	Line      int // source line of the row's first field
	CreatedAt string
	Student   string
	Booth     string
	Delta     string
}

// IsEmpty reports whether the row carries no transaction: no student, no booth and
// no delta. A timestamp on its own is not a transaction.
func (r RawRow) IsEmpty() bool {
	return r.Student == "" && r.Booth == "" && r.Delta == ""
}

// RawTable is the Loader's output: data rows in file order.
type RawTable struct {
	Header []string
	Rows   []RawRow
}

// Record is one cleaned transaction.
type Record struct {
	Row       int
	Line      int
	CreatedAt time.Time
	Student   string
	Booth     string
	Delta     decimal.NullDecimal
}

// Amount returns the delta, or zero when the cell was empty.
func (r Record) Amount() decimal.Decimal {
	if !r.Delta.Valid {
		return decimal.Zero
	}
	return r.Delta.Decimal
}

// Table is the cleaned transaction table, sorted ascending by CreatedAt.
type Table struct {
	Records []Record
	// Dropped counts the empty rows discarded during cleaning.
	Dropped int
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
