// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package reassign executes an approved reassignment against the issue tracker.
package reassign

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/notification"
	"github.com/similigh/mailbox-monitor/internal/tracker"
)

// ErrorKind classifies why a reassignment did not fully complete.
type ErrorKind string

const (
	ErrURLUnparseable      ErrorKind = "url_unparseable"
	ErrAssigneeNotEligible ErrorKind = "assignee_not_eligible"
	ErrIssueLookupFailed   ErrorKind = "issue_lookup_failed"
	ErrReassignmentFailed  ErrorKind = "reassignment_failed"
	ErrCommentPostFailed   ErrorKind = "comment_post_failed"
)

// Outcome reports the result of one Execute call.
type Outcome struct {
	Succeeded        bool      `json:"succeeded"`
	CommentPosted    bool      `json:"comment_posted"`
	ErrorKind        ErrorKind `json:"error_kind,omitempty"`
	PreviousAssignee string    `json:"previous_assignee,omitempty"`
	Err              error     `json:"-"`
}

// Workflow reassigns issues through a Tracker.
type Workflow struct {
	tracker tracker.Tracker
	logger  *zap.Logger
}

// NewWorkflow creates a reassignment workflow.
func NewWorkflow(t tracker.Tracker, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{tracker: t, logger: logger.Named("reassign")}
}

// Execute reassigns the notification's issue to assignee and posts an audit
// comment. It never returns an error; failures are reported on the Outcome.
func (w *Workflow) Execute(ctx context.Context, n *notification.IssueNotification, assignee string, reasoning *string) Outcome {
	ref, err := tracker.ParseIssueURL(n.GetURL())
	if err != nil {
		w.logger.Error("Could not parse issue URL", zap.String("url", n.GetURL()), zap.Error(err))
		return failed(ErrURLUnparseable, err)
	}
	log := w.logger.With(zap.Stringer("ref", ref), zap.String("assignee", assignee))

	members, err := w.tracker.Members(ctx, ref.Project)
	if err != nil {
		log.Error("Failed to list project members", zap.Error(err))
		return failed(ErrAssigneeNotEligible, err)
	}
	if !tracker.IsMember(members, assignee) {
		log.Warn("Assignee is not a project member")
		return failed(ErrAssigneeNotEligible, fmt.Errorf("%s is not a member of %s", assignee, ref.Project))
	}

	current, err := w.tracker.CurrentAssignee(ctx, ref)
	if err != nil {
		log.Error("Failed to fetch issue", zap.Error(err))
		return failed(ErrIssueLookupFailed, err)
	}
	if current == assignee {
		log.Info("Issue already assigned to recommended assignee")
		return Outcome{Succeeded: true, PreviousAssignee: current}
	}

	if err := w.tracker.Assign(ctx, ref, assignee); err != nil {
		log.Error("Failed to reassign issue", zap.Error(err))
		out := failed(ErrReassignmentFailed, err)
		out.PreviousAssignee = current
		return out
	}
	log.Info("Reassigned issue", zap.String("previous", current))

	out := Outcome{Succeeded: true, PreviousAssignee: current}
	body := BuildAuditComment(ref.Kind, current, assignee, reasoning)
	if err := w.tracker.Comment(ctx, ref, body); err != nil {
		log.Warn("Failed to post audit comment", zap.Error(err))
		out.ErrorKind = ErrCommentPostFailed
		out.Err = err
		return out
	}
	out.CommentPosted = true
	return out
}

func failed(kind ErrorKind, err error) Outcome {
	return Outcome{ErrorKind: kind, Err: err}
}

// UnassignedPlaceholder stands in for an absent previous assignee.
const UnassignedPlaceholder = "unassigned"

// BuildAuditComment renders the fixed audit comment posted after a reassignment.
func BuildAuditComment(kind tracker.Kind, previous, assignee string, reasoning *string) string {
	if previous == "" {
		previous = UnassignedPlaceholder
	}

	lines := []string{
		"🤖 **Automated Assignment Update**",
		"",
		fmt.Sprintf("This %s has been reassigned from `%s` to `%s` based on AI analysis.", kind.Label(), previous, assignee),
	}
	if reasoning != nil && strings.TrimSpace(*reasoning) != "" {
		lines = append(lines, "", "**AI Reasoning:**", *reasoning)
	}
	lines = append(lines,
		"",
		"---",
		"*This assignment was made automatically by the mailbox-monitor service.*",
	)
	return strings.Join(lines, "\n")
}
