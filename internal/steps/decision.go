package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/decision"
	"github.com/similigh/mailbox-monitor/internal/metrics"
)

// Decider applies the decision policy to the notification and prediction.
type Decider struct {
	policy decision.Policy
	logger *zap.Logger
}

// NewDecider creates a new decision step.
func NewDecider(deps *pipeline.Dependencies) *Decider {
	return &Decider{
		policy: deps.Policy,
		logger: stepLogger(deps, "decision"),
	}
}

// Name returns the step name.
func (s *Decider) Name() string {
	return "decision"
}

// Run records the decision. A Skip ends the pipeline for this email.
func (s *Decider) Run(ctx *pipeline.Context) error {
	d := decision.Decide(ctx.Notification, ctx.Prediction, s.policy)
	ctx.Decision = &d
	ctx.Result.Action = d.Action
	ctx.Result.Reason = d.Reason
	metrics.RecordDecision(string(d.Action), d.Rule)

	s.logger.Info("Decision",
		zap.String("url", ctx.Notification.GetURL()),
		zap.String("action", string(d.Action)),
		zap.String("rule", d.Rule),
		zap.String("reason", d.Reason))

	if d.Action != decision.Skip {
		return nil
	}

	// The desired state already holds, so the notification is dealt with.
	if d.Rule == decision.RuleAlreadyAssigned {
		ctx.Result.Handled = true
	}
	ctx.Result.Skipped = true
	ctx.Result.SkipReason = d.Reason
	return pipeline.ErrSkipPipeline
}
