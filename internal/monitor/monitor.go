// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package monitor polls the mailbox and runs every fetched email through the
// assignment pipeline, one email at a time.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/metrics"
)

// Mailbox is the mail transport the monitor polls.
type Mailbox interface {
	Fetch(ctx context.Context, limit int) ([]pipeline.Email, error)
	MarkSeen(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// HealthChecker is an external service that can report reachability.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options configures a Monitor.
type Options struct {
	Mailbox  Mailbox
	Pipeline *pipeline.Pipeline

	// Predictor and Tracker are only used for health checks; the pipeline
	// steps hold their own references.
	Predictor HealthChecker
	Tracker   HealthChecker

	MaxPerCycle int
	Interval    time.Duration
	ItemDelay   time.Duration

	// OnResult, if set, is called after each email is processed.
	OnResult func(pipeline.Result)

	Logger *zap.Logger
}

// CycleReport summarizes one polling cycle.
type CycleReport struct {
	Fetched    int               `json:"fetched"`
	Candidates int               `json:"candidates"`
	Handled    int               `json:"handled"`
	Results    []pipeline.Result `json:"results"`
}

// Monitor owns the polling loop.
type Monitor struct {
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Monitor.
func New(opts Options) (*Monitor, error) {
	if opts.Mailbox == nil {
		return nil, errors.New("monitor: mailbox is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("monitor: pipeline is required")
	}
	if opts.MaxPerCycle <= 0 {
		opts.MaxPerCycle = 25
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.ItemDelay > 0 {
		limit = rate.Every(opts.ItemDelay)
	}

	return &Monitor{
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  opts.Logger.Named("monitor"),
	}, nil
}

// RunOnce fetches up to MaxPerCycle unread emails and processes them in
// mailbox order. Per-email failures are logged and recorded on the results;
// only a fetch failure or cancellation is returned.
func (m *Monitor) RunOnce(ctx context.Context) (CycleReport, error) {
	var report CycleReport

	emails, err := m.opts.Mailbox.Fetch(ctx, m.opts.MaxPerCycle)
	if err != nil {
		metrics.IncrementPollErrors()
		return report, fmt.Errorf("failed to fetch emails: %w", err)
	}
	report.Fetched = len(emails)
	metrics.RecordFetched(len(emails))

	if len(emails) == 0 {
		m.logger.Debug("No new emails found")
		return report, nil
	}
	m.logger.Info("Found new emails", zap.Int("count", len(emails)))

	for i := range emails {
		if err := m.limiter.Wait(ctx); err != nil {
			return report, err
		}

		result := m.process(ctx, &emails[i])
		report.Results = append(report.Results, result)
		if result.Candidate {
			report.Candidates++
		}
		if result.Handled {
			report.Handled++
		}
		if m.opts.OnResult != nil {
			m.opts.OnResult(result)
		}
	}

	m.logger.Info("Cycle complete",
		zap.Int("fetched", report.Fetched),
		zap.Int("candidates", report.Candidates),
		zap.Int("handled", report.Handled))
	return report, nil
}

// process runs one email through the pipeline and marks it seen.
func (m *Monitor) process(ctx context.Context, email *pipeline.Email) pipeline.Result {
	runID := uuid.NewString()
	log := m.logger.With(zap.String("run_id", runID), zap.String("email_id", email.ID))

	pCtx := pipeline.NewContext(ctx, runID, email)
	if err := m.opts.Pipeline.Run(pCtx); err != nil {
		log.Error("Pipeline failed", zap.Error(err))
		pCtx.Result.Errors = append(pCtx.Result.Errors, err)
	}

	if pCtx.Result.Candidate {
		log.Info("Processed notification",
			zap.String("subject", email.Subject),
			zap.String("url", pCtx.Result.IssueURL),
			zap.String("action", string(pCtx.Result.Action)),
			zap.String("reason", pCtx.Result.Reason),
			zap.Bool("handled", pCtx.Result.Handled))
	}

	// Every fetched email is consumed once, whatever the outcome.
	if err := m.opts.Mailbox.MarkSeen(ctx, email.ID); err != nil {
		log.Warn("Failed to mark email as seen", zap.Error(err))
	}

	return *pCtx.Result
}

// Run performs an initial health check, then polls until ctx is cancelled.
// A failed initial health check is returned as an error.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Starting continuous monitoring",
		zap.Duration("interval", m.opts.Interval),
		zap.Int("max_per_cycle", m.opts.MaxPerCycle))

	if report := m.HealthCheck(ctx); !report.Healthy() {
		return fmt.Errorf("initial health check failed: %s", report)
	}

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error("Polling cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Monitoring stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Close releases the mailbox connection.
func (m *Monitor) Close() error {
	return m.opts.Mailbox.Close()
}
