package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the status label of pointlog_reports_total.
const (
	StatusOK             = "ok"
	StatusParseError     = "parse_error"
	StatusTimestampError = "timestamp_error"
	StatusEmpty          = "empty"
	StatusError          = "error"
)

// Recorder owns a private registry so tests and multiple servers never collide on the
// global one.
type Recorder struct {
	registry *prometheus.Registry

	reportsTotal   *prometheus.CounterVec
	rowsRead       prometheus.Counter
	rowsDropped    prometheus.Counter
	reportDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pointlog_reports_total",
			Help: "Total number of point-log analysis runs by outcome.",
		}, []string{"status"}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pointlog_rows_read_total",
			Help: "Total data rows read from uploaded files.",
		}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pointlog_rows_dropped_total",
			Help: "Total empty rows discarded during cleaning.",
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pointlog_report_duration_seconds",
			Help:    "Duration of point-log analysis runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(r.reportsTotal, r.rowsRead, r.rowsDropped, r.reportDuration)
	return r
}

func (r *Recorder) RecordRun(status string, duration time.Duration) {
	r.reportsTotal.WithLabelValues(status).Inc()
	r.reportDuration.Observe(duration.Seconds())
}

func (r *Recorder) RecordRows(read, dropped int) {
	r.rowsRead.Add(float64(read))
	r.rowsDropped.Add(float64(dropped))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
