// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/config"
	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/decision"
	"github.com/similigh/mailbox-monitor/internal/integrations/assignapi"
	"github.com/similigh/mailbox-monitor/internal/integrations/gemini"
	"github.com/similigh/mailbox-monitor/internal/integrations/github"
	"github.com/similigh/mailbox-monitor/internal/integrations/gitlab"
	"github.com/similigh/mailbox-monitor/internal/integrations/imap"
	"github.com/similigh/mailbox-monitor/internal/monitor"
	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/reassign"
	"github.com/similigh/mailbox-monitor/internal/steps"
	"github.com/similigh/mailbox-monitor/internal/tracker"
	"github.com/similigh/mailbox-monitor/internal/utils/retry"
)

// app holds the long-lived clients for one process.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	mailbox   monitor.Mailbox
	predictor prediction.Predictor
	tracker   tracker.Tracker
	stepNames []string
	closers   []func() error
}

// bootstrap constructs the mailbox, prediction and tracker clients from cfg.
func bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		stepNames: pipeline.ResolveSteps(cfg.App.Steps, cfg.App.Workflow),
	}

	tr, err := newTracker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.tracker = tr

	if err := a.initPredictor(tr); err != nil {
		return nil, err
	}

	mailbox := imap.NewClient(imap.Config{
		Server:       cfg.Email.IMAPServer,
		Port:         cfg.Email.IMAPPort,
		Username:     cfg.Email.Username,
		Password:     cfg.Email.Password,
		Mailbox:      cfg.Email.Mailbox,
		SenderFilter: cfg.Email.SenderFilter,
		Timeout:      cfg.EmailTimeout(),
	}, logger)
	a.mailbox = mailbox
	a.closers = append(a.closers, mailbox.Close)

	logger.Info("Initialized clients",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("tracker_provider", cfg.Tracker.Provider),
		zap.Strings("steps", a.stepNames),
		zap.Bool("dry_run", cfg.App.DryRun))
	return a, nil
}

// newTracker selects the tracker backend.
func newTracker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (tracker.Tracker, error) {
	switch cfg.Tracker.Provider {
	case "gitlab":
		return gitlab.NewClient(gitlab.Options{
			BaseURL:    cfg.Tracker.URL,
			Token:      cfg.Tracker.Token,
			MaxRetries: cfg.Tracker.MaxRetries,
			Timeout:    cfg.TrackerTimeout(),
			Logger:     logger,
		})
	case "github":
		return github.NewClient(ctx, cfg.Tracker.Token, cfg.Tracker.URL, cfg.TrackerTimeout(), logger)
	default:
		return nil, fmt.Errorf("unsupported tracker provider %q", cfg.Tracker.Provider)
	}
}

// initPredictor selects the prediction backend. The Gemini backend uses the
// tracker's member list as its candidate set.
func (a *app) initPredictor(members gemini.MemberLister) error {
	cfg := a.cfg
	switch cfg.AI.Provider {
	case "http":
		a.predictor = newAssignAPIClient(cfg, a.logger)
	case "gemini":
		p, err := gemini.NewPredictor(cfg.AI.GeminiAPIKey, cfg.AI.Model, members, a.logger)
		if err != nil {
			return err
		}
		rc := gemini.DefaultRetryConfig()
		rc.MaxRetries = cfg.AI.MaxRetries
		p.SetRetryConfig(rc)
		p.SetTimeout(cfg.AITimeout())
		a.predictor = p
		a.closers = append(a.closers, p.Close)
	default:
		return fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
	return nil
}

// newAssignAPIClient builds the HTTP prediction service client.
func newAssignAPIClient(cfg *config.Config, logger *zap.Logger) *assignapi.Client {
	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.AI.MaxRetries
	return assignapi.NewClient(cfg.AI.APIURL, cfg.AI.APIKey, cfg.AITimeout(),
		assignapi.WithRetry(rc),
		assignapi.WithLogger(logger))
}

// buildPipeline assembles the configured steps. wrap, if non-nil, decorates
// every step.
func (a *app) buildPipeline(wrap func(pipeline.Step) pipeline.Step) (*pipeline.Pipeline, error) {
	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	deps := &pipeline.Dependencies{
		Logger:    a.logger,
		Predictor: a.predictor,
		Workflow:  reassign.NewWorkflow(a.tracker, a.logger),
		Policy: decision.Policy{
			MinConfidence: a.cfg.App.MinConfidence,
			DryRun:        a.cfg.App.DryRun,
		},
		SenderToken: a.cfg.Email.SenderFilter,
	}

	built, err := registry.BuildFromNames(a.stepNames, deps)
	if err != nil {
		return nil, err
	}
	if wrap == nil {
		return built, nil
	}

	wrapped := make([]pipeline.Step, 0, len(built.Steps()))
	for _, step := range built.Steps() {
		wrapped = append(wrapped, wrap(step))
	}
	return pipeline.New(wrapped...), nil
}

// newMonitor builds a Monitor over the app's clients.
func (a *app) newMonitor(p *pipeline.Pipeline, onResult func(pipeline.Result)) (*monitor.Monitor, error) {
	return monitor.New(monitor.Options{
		Mailbox:     a.mailbox,
		Pipeline:    p,
		Predictor:   a.predictor,
		Tracker:     a.tracker,
		MaxPerCycle: a.cfg.Email.MaxPerCycle,
		Interval:    a.cfg.CheckInterval(),
		ItemDelay:   a.cfg.ItemDelay(),
		OnResult:    onResult,
		Logger:      a.logger,
	})
}

// Close releases every client in reverse creation order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close client", zap.Error(err))
		}
	}
}
