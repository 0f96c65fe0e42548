package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// HealthCheck probes one dependency. Only required checks affect readiness.
type HealthCheck struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) error
}

// HealthService aggregates dependency probes for the readiness endpoint.
type HealthService struct {
	checks  []HealthCheck
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthService constructs HealthService.
func NewHealthService(logger *zap.Logger, checks ...HealthCheck) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{checks: checks, timeout: 2 * time.Second, logger: logger}
}

// Ready runs every probe and reports component states.
func (s *HealthService) Ready(ctx context.Context) models.HealthReport {
	report := models.HealthReport{
		Status:     models.ComponentUp,
		Components: make(map[string]models.ComponentHealth, len(s.checks)),
		CheckedAt:  time.Now().UTC(),
	}
	for _, check := range s.checks {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check.Probe(probeCtx)
		cancel()

		component := models.ComponentHealth{Status: models.ComponentUp, Required: check.Required}
		if err != nil {
			component.Status = models.ComponentDown
			component.Message = err.Error()
			s.logger.Warn("readiness probe failed", zap.String("component", check.Name), zap.Bool("required", check.Required), zap.Error(err))
		}
		report.Components[check.Name] = component
	}
	if !report.Healthy() {
		report.Status = models.ComponentDown
	}
	return report
}
