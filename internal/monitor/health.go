package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/metrics"
)

// Component names reported by HealthCheck.
const (
	ComponentMailbox    = "mailbox"
	ComponentPrediction = "prediction"
	ComponentTracker    = "tracker"
)

var errNotConfigured = errors.New("not configured")

// Check is the result of probing one component.
type Check struct {
	Component string `json:"component"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
}

// HealthReport lists the checks in a fixed order: mailbox, prediction, tracker.
type HealthReport struct {
	Checks []Check `json:"checks"`
}

// Healthy reports whether every component passed.
func (r HealthReport) Healthy() bool {
	for _, c := range r.Checks {
		if !c.Healthy {
			return false
		}
	}
	return len(r.Checks) > 0
}

// String renders a one-line summary such as "mailbox ok, prediction failed (...)".
func (r HealthReport) String() string {
	parts := make([]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		if c.Healthy {
			parts = append(parts, c.Component+" ok")
		} else {
			parts = append(parts, fmt.Sprintf("%s failed (%s)", c.Component, c.Error))
		}
	}
	return strings.Join(parts, ", ")
}

// HealthCheck probes the mailbox, prediction service and tracker. Every
// component is probed even when an earlier one fails.
func (m *Monitor) HealthCheck(ctx context.Context) HealthReport {
	m.logger.Info("Performing health check")

	probes := []struct {
		component string
		probe     func(context.Context) error
	}{
		{ComponentMailbox, m.opts.Mailbox.Ping},
		{ComponentPrediction, healthFunc(m.opts.Predictor)},
		{ComponentTracker, healthFunc(m.opts.Tracker)},
	}

	var report HealthReport
	for _, p := range probes {
		check := Check{Component: p.component, Healthy: true}
		if err := p.probe(ctx); err != nil {
			check.Healthy = false
			check.Error = err.Error()
			m.logger.Error("Component unhealthy", zap.String("component", p.component), zap.Error(err))
		} else {
			m.logger.Info("Component healthy", zap.String("component", p.component))
		}
		metrics.SetComponentHealth(p.component, check.Healthy)
		report.Checks = append(report.Checks, check)
	}

	if report.Healthy() {
		m.logger.Info("All services are healthy")
	} else {
		m.logger.Error("Some services are unhealthy", zap.Stringer("report", report))
	}
	return report
}

func healthFunc(c HealthChecker) func(context.Context) error {
	if c == nil {
		return func(context.Context) error { return errNotConfigured }
	}
	return c.Health
}
