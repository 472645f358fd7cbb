package logging

import (
	"context"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type logDataKey struct{}

// LogData collects the fields of one request and emits them as a single entry.
type LogData struct {
	mu      sync.Mutex
	fields  logrus.Fields
	timings map[string]int64
	logger  *logrus.Logger
}

func NewLogData(logger *logrus.Logger) *LogData {
	return &LogData{
		fields:  logrus.Fields{},
		timings: make(map[string]int64),
		logger:  logger,
	}
}

// newRequestLogData seeds a LogData with the chi request ID when one is present.
func newRequestLogData(ctx context.Context, logger *logrus.Logger) *LogData {
	logData := NewLogData(logger)
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logData.AddData("requestID", reqID)
	}
	return logData
}

// WithLogData attaches logData to ctx so handlers further down can add fields.
func WithLogData(ctx context.Context, logData *LogData) context.Context {
	return context.WithValue(ctx, logDataKey{}, logData)
}

// GetLogData returns the request's LogData, or nil outside a logged request.
func GetLogData(ctx context.Context) *LogData {
	logData, _ := ctx.Value(logDataKey{}).(*LogData)
	return logData
}

// AddTiming starts a timer; calling the returned func records the elapsed milliseconds
// under name.
func (l *LogData) AddTiming(name string) func() {
	start := time.Now()

	return func() {
		elapsed := time.Since(start).Milliseconds()
		l.mu.Lock()
		l.timings[name] = elapsed
		l.mu.Unlock()
	}
}

func (l *LogData) AddData(key string, value interface{}) {
	l.mu.Lock()
	l.fields[key] = value
	l.mu.Unlock()
}

// Log returns an entry carrying every field and timing recorded so far.
func (l *LogData) Log() *logrus.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(logrus.Fields, len(l.fields)+len(l.timings))
	for key, value := range l.fields {
		fields[key] = value
	}
	for key, ms := range l.timings {
		fields[key] = ms
	}
	return l.logger.WithFields(fields)
}
