package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/carson-networks/pointlog/internal/analytics"
)

// Sheet names, in workbook order.
const (
	SheetSummary = "Summary"
	SheetPreview = "Preview"
	SheetFlow    = "Flow"
	SheetBooths  = "Booths"
	SheetHourly  = "Hourly"
)

const timeLayout = time.RFC3339

// Headline phrases the headline booth for readers. It is empty when there is no booth.
func Headline(booth string) string {
	if booth == "" {
		return ""
	}
	return fmt.Sprintf("Booth where the most points were spent: %s", booth)
}

// WriteReport renders report as an XLSX workbook with one sheet per view.
func WriteReport(w io.Writer, report *analytics.Report) error {
	if report == nil {
		return fmt.Errorf("exporter: nil report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("exporter: rename default sheet: %w", err)
	}
	for _, name := range []string{SheetPreview, SheetFlow, SheetBooths, SheetHourly} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("exporter: create sheet %s: %w", name, err)
		}
	}

	sheets := map[string][][]interface{}{
		SheetSummary: summaryRows(report),
		SheetPreview: previewRows(report),
		SheetFlow:    flowRows(report),
		SheetBooths:  boothRows(report),
		SheetHourly:  hourlyRows(report),
	}
	var errs *multierror.Error
	for name, rows := range sheets {
		errs = multierror.Append(errs, writeRows(f, name, rows))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("exporter: write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("exporter: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(report *analytics.Report) [][]interface{} {
	return [][]interface{}{
		{"run_id", report.RunID.String()},
		{"analyzed_at", report.AnalyzedAt.UTC().Format(timeLayout)},
		{"transactions", report.Summary.Transactions},
		{"students", report.Summary.Students},
		{"booths", report.Summary.Booths},
		{"total", number(report.Total)},
		{"headline_booth", report.HeadlineBooth},
		{"headline", Headline(report.HeadlineBooth)},
	}
}

func previewRows(report *analytics.Report) [][]interface{} {
	rows := [][]interface{}{{"created_at_utc", "student_name", "booth_name", "delta"}}
	for _, rec := range report.Preview {
		var delta interface{}
		if rec.Delta.Valid {
			delta = number(rec.Delta.Decimal)
		}
		rows = append(rows, []interface{}{rec.CreatedAt.UTC().Format(timeLayout), rec.Student, rec.Booth, delta})
	}
	return rows
}

func flowRows(report *analytics.Report) [][]interface{} {
	rows := [][]interface{}{{"created_at_utc", "cumulative"}}
	for _, p := range report.Flow {
		rows = append(rows, []interface{}{p.At.UTC().Format(timeLayout), number(p.Total)})
	}
	return rows
}

func boothRows(report *analytics.Report) [][]interface{} {
	rows := [][]interface{}{{"booth_name", "total"}}
	for _, b := range report.Booths {
		rows = append(rows, []interface{}{b.Booth, number(b.Total)})
	}
	return rows
}

func hourlyRows(report *analytics.Report) [][]interface{} {
	rows := [][]interface{}{{"hour", "total"}}
	for _, h := range report.Hourly {
		rows = append(rows, []interface{}{h.Hour, number(h.Total)})
	}
	return rows
}

// number keeps integral amounts as integers so they round-trip without a trailing ".0".
func number(d decimal.Decimal) interface{} {
	if d.IsInteger() && d.Abs().LessThan(decimal.NewFromInt(1<<53)) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}
