package pointlog

import (
	"fmt"
	"strings"
)

// ParseError reports input that is not usable delimited text: malformed quoting,
// missing required columns, ragged rows or a non-numeric delta.
type ParseError struct {
	Line    int
	Row     int
	Column  string
	Missing []string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("pointlog: parse error")
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " in column %q", e.Column)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required columns %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TimestampParseError names the surviving row whose created_at_utc could not be parsed.
type TimestampParseError struct {
	Row   int
	Line  int
	Value string
	Err   error
}

func (e *TimestampParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("pointlog: row %d (line %d): %s is empty", e.Row, e.Line, ColumnCreatedAt)
	}
	return fmt.Sprintf("pointlog: row %d (line %d): cannot parse %s %q", e.Row, e.Line, ColumnCreatedAt, e.Value)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

// EmptyInputError is returned when a file has a header but no row survives cleaning.
type EmptyInputError struct {
	RawRows int
}

func (e *EmptyInputError) Error() string {
	if e.RawRows == 0 {
		return "pointlog: file has no data rows"
	}
	return fmt.Sprintf("pointlog: none of %d data rows survived cleaning", e.RawRows)
}
