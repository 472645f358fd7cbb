package service

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/pointlog/internal/metrics"
)

// Service holds all business logic services.
type Service struct {
	Report *ReportService
}

// NewService creates a new Service.
func NewService(logger *logrus.Logger, recorder *metrics.Recorder, defaults AnalyzeOptions) *Service {
	return &Service{
		Report: NewReportService(logger, recorder, defaults),
	}
}
