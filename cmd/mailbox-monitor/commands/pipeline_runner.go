// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package commands

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/tui"
)

// Wrapper step to send status updates
type statusReportingStep struct {
	inner      pipeline.Step
	statusChan chan<- tea.Msg
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.send(ctx, "started", "Starting...")

	err := s.inner.Run(ctx)

	if err != nil {
		if errors.Is(err, pipeline.ErrSkipPipeline) {
			s.send(ctx, "skipped", ctx.Result.SkipReason)
			return err
		}
		s.send(ctx, "error", err.Error())
		return err
	}

	s.send(ctx, "success", "Completed")
	return nil
}

func (s *statusReportingStep) send(ctx *pipeline.Context, status, message string) {
	s.statusChan <- tui.PipelineStatusMsg{
		EmailID: ctx.Email.ID,
		Subject: ctx.Email.Subject,
		Step:    s.Name(),
		Status:  status,
		Message: message,
	}
}
