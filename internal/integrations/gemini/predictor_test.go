// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/tracker"
)

type stubMembers struct {
	project string
	members []tracker.Member
	err     error
}

func (s *stubMembers) Members(_ context.Context, project string) ([]tracker.Member, error) {
	s.project = project
	return s.members, s.err
}

func TestBuildAssigneePrompt(t *testing.T) {
	priority := "high"
	issue := prediction.IssueFields{
		Title:       "Fix login bug",
		Description: "Users cannot log in",
		Labels:      []string{"bug", "auth"},
		Project:     "team/backend",
		URL:         "https://git.example.com/team/backend/-/issues/42",
		IssueNumber: "42",
		Priority:    &priority,
	}

	prompt := buildAssigneePrompt(issue, []string{"alice", "bob"})

	for _, want := range []string{"Fix login bug", "bug, auth", "alice, bob", "Priority: high", "unassigned", "recommended_assignee"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Contains(prompt, "Milestone:") {
		t.Error("prompt should not mention an absent milestone")
	}
}

func TestBuildAssigneePromptWithoutCandidates(t *testing.T) {
	prompt := buildAssigneePrompt(prediction.IssueFields{CurrentAssignee: "carol"}, nil)

	if !strings.Contains(prompt, "not available") {
		t.Error("prompt should say candidates are not available")
	}
	if !strings.Contains(prompt, "Current Assignee: carol") {
		t.Error("prompt should contain the current assignee")
	}
}

func TestCandidatesUsesProjectFromURL(t *testing.T) {
	members := &stubMembers{members: []tracker.Member{{Username: "alice"}, {Username: "bob"}}}
	p := &Predictor{members: members, logger: zap.NewNop()}

	got := p.candidates(context.Background(), prediction.IssueFields{
		Project: "Backend",
		URL:     "https://git.example.com/team/backend/-/issues/42",
	})

	if members.project != "team/backend" {
		t.Errorf("expected project from URL, got %q", members.project)
	}
	if strings.Join(got, ",") != "alice,bob" {
		t.Errorf("unexpected candidates %v", got)
	}
}

func TestCandidatesToleratesErrors(t *testing.T) {
	p := &Predictor{members: &stubMembers{err: errors.New("forbidden")}, logger: zap.NewNop()}
	if got := p.candidates(context.Background(), prediction.IssueFields{Project: "team/backend"}); got != nil {
		t.Errorf("expected no candidates, got %v", got)
	}

	p = &Predictor{logger: zap.NewNop()}
	if got := p.candidates(context.Background(), prediction.IssueFields{Project: "team/backend"}); got != nil {
		t.Errorf("expected no candidates without a member lister, got %v", got)
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"recommended_assignee":`), genai.Text(`"bob"}`)}},
		}},
	}

	if got := responseText(resp); got != `{"recommended_assignee":"bob"}` {
		t.Errorf("got %q", got)
	}
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}

	for _, tt := range tests {
		if got := cleanJSON(tt.in); got != tt.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCallWithTimeoutBoundsBlockedCall(t *testing.T) {
	start := time.Now()
	_, err := callWithTimeout(context.Background(), 50*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("call not bounded, took %s", elapsed)
	}
}

func TestCallWithTimeoutDisabled(t *testing.T) {
	got, err := callWithTimeout(context.Background(), 0, func(ctx context.Context) (string, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline with a zero timeout")
		}
		return "alice", nil
	})
	if err != nil || got != "alice" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestPredictorTimeoutDefaults(t *testing.T) {
	p := &Predictor{timeout: DefaultTimeout}
	p.SetTimeout(5 * time.Second)
	if p.timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", p.timeout)
	}
}
