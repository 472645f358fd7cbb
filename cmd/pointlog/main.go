package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/pointlog/internal/analytics"
	"github.com/carson-networks/pointlog/internal/logging"
	"github.com/carson-networks/pointlog/internal/metrics"
	"github.com/carson-networks/pointlog/internal/pointlog"
	"github.com/carson-networks/pointlog/internal/service"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logrus.WithError(err).Error("pointlog")
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "pointlog",
		Usage:     "summarize booth point transaction logs",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"POINTLOG_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print the summary, booth and hourly totals of a point log",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "preview",
				Value: analytics.DefaultPreviewRows,
				Usage: "number of rows to show in the preview",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Value: pointlog.EncodingUTF8,
				Usage: "input encoding: utf-8 or euc-kr",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "also write the report as a workbook to this path",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "print the full report structure",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("analyze: exactly one FILE argument is required")
	}
	if preview := c.Int("preview"); preview < 1 || preview > 100 {
		return errors.New("analyze: --preview must be between 1 and 100")
	}

	file, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	logger := logging.SetupLogging(c.String("log-level"))
	logger.Out = c.App.ErrWriter
	svc := service.NewReportService(logger, metrics.NewRecorder(), service.AnalyzeOptions{})

	report, err := svc.Analyze(c.Context, file, service.AnalyzeOptions{
		PreviewRows: c.Int("preview"),
		Encoding:    c.String("encoding"),
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("dump") {
		dumpReport(out, report)
	} else {
		writeText(out, report)
	}

	if path := c.String("xlsx"); path != "" {
		data, err := svc.Export(c.Context, report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Fprintf(out, "\nworkbook written to %s\n", path)
	}
	return nil
}
