package pointlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings.
const (
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
)

// LoadOptions configures Load. The zero value reads UTF-8.
type LoadOptions struct {
	Encoding string
}

// Load parses comma-separated text with a header row into a RawTable holding only the
// required columns. It fails with a *ParseError when the text is malformed or a required
// column is absent.
func Load(r io.Reader, opts LoadOptions) (*RawTable, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: "input is empty, a header row is required"}
	}
	if err != nil {
		return nil, csvParseError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	table := &RawTable{Header: header}
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := reader.FieldPos(0)
		if len(fields) > len(header) {
			return nil, &ParseError{
				Row:    row,
				Line:   line,
				Reason: fmt.Sprintf("row has %d fields, header has %d", len(fields), len(header)),
			}
		}

		cell := func(column string) string {
			i := index[column]
			if i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}
		table.Rows = append(table.Rows, RawRow{
			Row:       row,
			Line:      line,
			CreatedAt: cell(ColumnCreatedAt),
			Student:   cell(ColumnStudent),
			Booth:     cell(ColumnBooth),
			Delta:     cell(ColumnDelta),
		})
	}

	return table, nil
}

// columnIndex maps each required column to its position. The first occurrence of a
// duplicated name wins.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(RequiredColumns))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{Line: 1, Missing: missing}
	}
	return index, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	case EncodingEUCKR, "euckr", "cp949":
		return korean.EUCKR, nil
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported encoding %q", name)}
	}
}

func csvParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}
