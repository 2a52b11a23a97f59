// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package pipeline provides the core pipeline engine for the mailbox monitor.
// It defines the Step interface and Context structure used by all pipeline steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/similigh/mailbox-monitor/internal/decision"
	"github.com/similigh/mailbox-monitor/internal/notification"
	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/reassign"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., not a notification, skip decision).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// Email represents one mailbox message being processed.
type Email struct {
	ID      string // Mailbox-specific identifier (IMAP UID)
	From    string
	Subject string
	Body    string // Plain text; HTML bodies are already rendered to text
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	RunID               string             `json:"run_id"`
	EmailID             string             `json:"email_id"`
	Subject             string             `json:"subject"`
	Candidate           bool               `json:"candidate"`
	Skipped             bool               `json:"skipped"`
	SkipReason          string             `json:"skip_reason,omitempty"`
	IssueURL            string             `json:"issue_url,omitempty"`
	Action              decision.Action    `json:"action,omitempty"`
	Reason              string             `json:"reason,omitempty"`
	RecommendedAssignee string             `json:"recommended_assignee,omitempty"`
	Confidence          float64            `json:"confidence,omitempty"`
	Reassigned          bool               `json:"reassigned"`
	CommentPosted       bool               `json:"comment_posted"`
	ErrorKind           reassign.ErrorKind `json:"error_kind,omitempty"`
	Handled             bool               `json:"handled"`
	Errors              []error            `json:"-"`
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Email is the message being processed.
	Email *Email

	// Notification is filled by the extractor step.
	Notification *notification.IssueNotification

	// Prediction is nil until the predictor step obtains a valid one.
	Prediction *prediction.Prediction

	// Decision is set by the decision step.
	Decision *decision.Decision

	// Outcome is set when a reassignment was attempted.
	Outcome *reassign.Outcome

	// Result accumulates the processing results.
	Result *Result

	// Metadata allows steps to pass arbitrary data to subsequent steps.
	Metadata map[string]interface{}
}

// NewContext creates a new pipeline context for an email.
func NewContext(ctx context.Context, runID string, email *Email) *Context {
	return &Context{
		Ctx:   ctx,
		Email: email,
		Result: &Result{
			RunID:   runID,
			EmailID: email.ID,
			Subject: email.Subject,
		},
		Metadata: make(map[string]interface{}),
	}
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				// Graceful early exit
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
