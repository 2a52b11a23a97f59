// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package steps contains the modular "Lego block" pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/notification"
)

// Gatekeeper drops emails that do not look like tracker assignment notifications.
type Gatekeeper struct {
	senderToken string
	logger      *zap.Logger
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{
		senderToken: deps.SenderToken,
		logger:      stepLogger(deps, "gatekeeper"),
	}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run checks the sender and subject of the email.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	if !notification.IsAssignmentEmail(ctx.Email.From, ctx.Email.Subject, s.senderToken) {
		s.logger.Debug("Not an assignment notification",
			zap.String("from", ctx.Email.From),
			zap.String("subject", ctx.Email.Subject))
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "not an assignment notification"
		return pipeline.ErrSkipPipeline
	}

	ctx.Result.Candidate = true
	return nil
}

// stepLogger returns the injected logger scoped to a step, or a no-op logger.
func stepLogger(deps *pipeline.Dependencies, name string) *zap.Logger {
	if deps == nil || deps.Logger == nil {
		return zap.NewNop()
	}
	return deps.Logger.Named(name)
}
