package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/pointlog/internal/handlers/v1/report"
	"github.com/carson-networks/pointlog/internal/handlers/v1/status"
	"github.com/carson-networks/pointlog/internal/logging"
	"github.com/carson-networks/pointlog/internal/metrics"
	"github.com/carson-networks/pointlog/internal/operator"
	"github.com/carson-networks/pointlog/internal/service"
)

type Rest struct {
	Logger       *logrus.Logger
	Port         string
	MaxBodyBytes int64
	Operator     *operator.OperatorDelegator
	Service      *service.Service
	Metrics      *metrics.Recorder
}

// Router builds the chi router with the huma API mounted on it.
func (r *Rest) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	statusHandler := status.NewHandler()
	router.Get("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))
	router.Method(http.MethodGet, "/metrics", r.Metrics.Handler())

	api := humachi.New(router, huma.DefaultConfig("pointlog", "1.0.0"))
	api.UseMiddleware(logging.HumaMiddleware(r.Logger))

	report.NewAnalyzeReportHandler(r.Operator, r.Service.Report, r.MaxBodyBytes).Register(api)
	report.NewExportReportHandler(r.Operator, r.Service.Report, r.MaxBodyBytes).Register(api)

	return router
}

// Serve listens until ctx is cancelled, then shuts the server down gracefully.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
