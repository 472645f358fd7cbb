package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Supported values for the trace_exporter setting.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// NewProvider builds a tracer provider. "none" records spans without exporting them;
// "stdout" writes them to w as JSON.
func NewProvider(exporter string, w io.Writer) (*sdktrace.TracerProvider, error) {
	switch exporter {
	case "", ExporterNone:
		return sdktrace.NewTracerProvider(), nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("tracing: stdout exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp)), nil
	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q", exporter)
	}
}

// Setup installs the global tracer provider and returns its shutdown function.
func Setup(exporter string) (func(context.Context) error, error) {
	tp, err := NewProvider(exporter, os.Stdout)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
