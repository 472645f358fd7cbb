package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/pointlog/api"
	"github.com/carson-networks/pointlog/internal/config"
	"github.com/carson-networks/pointlog/internal/logging"
	"github.com/carson-networks/pointlog/internal/metrics"
	"github.com/carson-networks/pointlog/internal/operator"
	"github.com/carson-networks/pointlog/internal/service"
	"github.com/carson-networks/pointlog/internal/tracing"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("pointlog starting")

	shutdownTracing, err := tracing.Setup(envConfig.TraceExporter)
	if err != nil {
		logger.WithError(err).Fatal("tracing.Setup")
		return
	}

	recorder := metrics.NewRecorder()
	svc := service.NewService(logger, recorder, service.AnalyzeOptions{
		PreviewRows: envConfig.PreviewRows,
		Encoding:    envConfig.Encoding,
	})

	delegator := operator.NewOperatorDelegator(envConfig.Workers)
	delegator.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpRest := api.Rest{
		Logger:       logger,
		Port:         envConfig.Port,
		MaxBodyBytes: envConfig.MaxUploadBytes,
		Operator:     delegator,
		Service:      svc,
		Metrics:      recorder,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Workers stop only after the server has drained in-flight uploads.
		defer delegator.Stop()
		return httpRest.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("pointlog shutting down")
		return nil
	})

	err = g.Wait()
	if shutdownErr := shutdownTracing(context.Background()); shutdownErr != nil {
		logger.WithError(shutdownErr).Warn("tracing.Shutdown")
	}
	if err != nil {
		logger.WithError(err).Error("pointlog stopped with error")
		return
	}
	logger.Info("pointlog stopped")
}
