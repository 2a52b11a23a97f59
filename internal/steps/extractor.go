package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/notification"
)

// Extractor turns the email text into an IssueNotification.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new extractor step.
func NewExtractor(deps *pipeline.Dependencies) *Extractor {
	return &Extractor{logger: stepLogger(deps, "extractor")}
}

// Name returns the step name.
func (s *Extractor) Name() string {
	return "extractor"
}

// Run extracts the notification. Extraction never fails; missing fields stay absent.
func (s *Extractor) Run(ctx *pipeline.Context) error {
	n := notification.Extract(ctx.Email.Subject, ctx.Email.Body)
	ctx.Notification = &n
	ctx.Result.IssueURL = n.GetURL()

	if n.IsEmpty() {
		s.logger.Info("No issue fields found in email", zap.String("subject", ctx.Email.Subject))
		return nil
	}

	s.logger.Debug("Extracted notification",
		zap.String("url", n.GetURL()),
		zap.String("title", n.GetTitle()),
		zap.String("issue_number", n.GetIssueNumber()),
		zap.String("current_assignee", n.GetCurrentAssignee()),
		zap.Strings("labels", n.Labels))
	return nil
}
