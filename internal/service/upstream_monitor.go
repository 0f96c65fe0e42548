package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type upstreamPinger interface {
	Ping(ctx context.Context) bool
}

// UpstreamMonitor periodically probes course-api and publishes the result
// to the course_api_up gauge.
type UpstreamMonitor struct {
	pinger   upstreamPinger
	metrics  *MetricsService
	logger   *zap.Logger
	interval time.Duration
	cron     *cron.Cron

	mu    sync.RWMutex
	known bool
	up    bool
}

// NewUpstreamMonitor constructs an UpstreamMonitor. interval defaults to 30s.
func NewUpstreamMonitor(pinger upstreamPinger, metrics *MetricsService, interval time.Duration, logger *zap.Logger) *UpstreamMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpstreamMonitor{
		pinger:   pinger,
		metrics:  metrics,
		logger:   logger.With(zap.String("upstream", "course-api")),
		interval: interval,
		cron:     cron.New(),
	}
}

// Start probes once immediately and then on every interval.
func (m *UpstreamMonitor) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), func() { m.Probe(ctx) }); err != nil {
		return fmt.Errorf("schedule upstream probe: %w", err)
	}
	m.Probe(ctx)
	m.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (m *UpstreamMonitor) Stop() {
	<-m.cron.Stop().Done()
}

// Probe performs one health check and logs state transitions.
func (m *UpstreamMonitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	up := m.pinger.Ping(probeCtx)
	m.metrics.SetUpstreamUp(up)

	m.mu.Lock()
	changed := !m.known || m.up != up
	m.known = true
	m.up = up
	m.mu.Unlock()

	if changed {
		if up {
			m.logger.Info("course service reachable")
		} else {
			m.logger.Warn("course service unreachable")
		}
	}
	return up
}

// Up reports the most recent probe result.
func (m *UpstreamMonitor) Up() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.known && m.up
}
