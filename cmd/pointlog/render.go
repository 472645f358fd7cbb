package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/exporter"
)

func writeText(w io.Writer, report *analytics.Report) {
	fmt.Fprintf(w, "run %s\n\n", report.RunID)
	fmt.Fprintf(w, "transactions: %d\nstudents:     %d\nbooths:       %d\n\n",
		report.Summary.Transactions, report.Summary.Students, report.Summary.Booths)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "created_at_utc\tstudent_name\tbooth_name\tdelta")
	for _, rec := range report.Preview {
		delta := ""
		if rec.Delta.Valid {
			delta = rec.Delta.Decimal.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.CreatedAt.UTC().Format(time.RFC3339), rec.Student, rec.Booth, delta)
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nbooth totals")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range report.Booths {
		fmt.Fprintf(tw, "  %s\t%s\n", boothLabel(b.Booth), b.Total)
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nhourly totals")
	for _, h := range report.Hourly {
		fmt.Fprintf(w, "  %02d:00  %s\n", h.Hour, h.Total)
	}

	fmt.Fprintf(w, "\ncumulative total: %s\n", report.Total)
	if headline := exporter.Headline(report.HeadlineBooth); headline != "" {
		fmt.Fprintln(w, headline)
	}
}

func boothLabel(name string) string {
	if name == "" {
		return "(no booth)"
	}
	return name
}

func dumpReport(w io.Writer, report *analytics.Report) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	cfg.Fdump(w, report)
}
