// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package steps

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/decision"
	"github.com/similigh/mailbox-monitor/internal/metrics"
	"github.com/similigh/mailbox-monitor/internal/reassign"
)

// Reassigner executes Apply decisions through the reassignment workflow.
type Reassigner struct {
	workflow *reassign.Workflow
	logger   *zap.Logger
}

// NewReassigner creates a new reassigner step.
func NewReassigner(deps *pipeline.Dependencies) *Reassigner {
	return &Reassigner{
		workflow: deps.Workflow,
		logger:   stepLogger(deps, "reassigner"),
	}
}

// Name returns the step name.
func (s *Reassigner) Name() string {
	return "reassigner"
}

// Run performs the reassignment, or only logs it in dry-run mode.
func (s *Reassigner) Run(ctx *pipeline.Context) error {
	if ctx.Decision == nil || ctx.Prediction == nil {
		return nil
	}

	if ctx.Decision.Action == decision.SimulateApply {
		s.logger.Info("DRY RUN: would reassign",
			zap.String("url", ctx.Notification.GetURL()),
			zap.String("from", ctx.Notification.GetCurrentAssignee()),
			zap.String("to", ctx.Prediction.RecommendedAssignee),
			zap.String("reasoning", ctx.Prediction.GetReasoning()))
		ctx.Result.Handled = true
		return nil
	}
	if !ctx.Decision.Action.Mutates() {
		return nil
	}

	if s.workflow == nil {
		return fmt.Errorf("no reassignment workflow configured")
	}

	out := s.workflow.Execute(ctx.Ctx, ctx.Notification, ctx.Prediction.RecommendedAssignee, ctx.Prediction.Reasoning)
	ctx.Outcome = &out
	ctx.Result.Reassigned = out.Succeeded
	ctx.Result.CommentPosted = out.CommentPosted
	ctx.Result.ErrorKind = out.ErrorKind
	ctx.Result.Handled = out.Succeeded
	if out.Err != nil {
		ctx.Result.Errors = append(ctx.Result.Errors, out.Err)
	}
	metrics.RecordReassignment(out.Succeeded, string(out.ErrorKind))

	if out.Succeeded {
		s.logger.Info("Reassigned",
			zap.String("url", ctx.Notification.GetURL()),
			zap.String("previous", out.PreviousAssignee),
			zap.String("assignee", ctx.Prediction.RecommendedAssignee),
			zap.Bool("comment_posted", out.CommentPosted))
	} else {
		s.logger.Warn("Reassignment failed",
			zap.String("url", ctx.Notification.GetURL()),
			zap.String("error_kind", string(out.ErrorKind)),
			zap.Error(out.Err))
	}
	return nil
}
