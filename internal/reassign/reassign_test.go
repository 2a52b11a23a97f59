package reassign

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/similigh/mailbox-monitor/internal/notification"
	"github.com/similigh/mailbox-monitor/internal/tracker"
	"github.com/similigh/mailbox-monitor/internal/tracker/trackertest"
)

const issueURL = "https://git.example.com/team/backend/-/issues/42"

var issueRef = tracker.Reference{Project: "team/backend", Kind: tracker.KindIssue, IID: 42}

func ptr(s string) *string { return &s }

func newNotification(url string) *notification.IssueNotification {
	return &notification.IssueNotification{URL: ptr(url)}
}

func TestExecuteReassignsAndComments(t *testing.T) {
	fake := trackertest.NewFake("team/backend", "alice", "bob")
	fake.Assignees[issueRef] = "alice"
	w := NewWorkflow(fake, zaptest.NewLogger(t))

	out := w.Execute(context.Background(), newNotification(issueURL), "bob", ptr("Bob owns the auth module."))

	assert.True(t, out.Succeeded)
	assert.True(t, out.CommentPosted)
	assert.Empty(t, out.ErrorKind)
	assert.Equal(t, "alice", out.PreviousAssignee)
	assert.Equal(t, "bob", fake.Assignees[issueRef])
	require.Len(t, fake.Comments, 1)
	assert.Contains(t, fake.Comments[0].Body, "from `alice` to `bob`")
	assert.Contains(t, fake.Comments[0].Body, "Bob owns the auth module.")
}

func TestExecuteShortCircuitsWhenLiveAssigneeMatches(t *testing.T) {
	fake := trackertest.NewFake("team/backend", "bob")
	fake.Assignees[issueRef] = "bob"
	w := NewWorkflow(fake, zaptest.NewLogger(t))

	out := w.Execute(context.Background(), newNotification(issueURL), "bob", nil)

	assert.True(t, out.Succeeded)
	assert.False(t, out.CommentPosted)
	assert.Empty(t, out.ErrorKind)
	assert.Empty(t, fake.AssignCalls)
	assert.Empty(t, fake.Comments)
}

func TestExecuteFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		url        string
		setup      func(f *trackertest.Fake)
		wantKind   ErrorKind
		wantAssign int
	}{
		{
			name:     "unparseable url",
			url:      "https://git.example.com/team/backend",
			wantKind: ErrURLUnparseable,
		},
		{
			name:     "assignee not a member",
			url:      issueURL,
			setup:    func(f *trackertest.Fake) { f.ProjectMembers["team/backend"] = nil },
			wantKind: ErrAssigneeNotEligible,
		},
		{
			name:     "member lookup fails",
			url:      issueURL,
			setup:    func(f *trackertest.Fake) { f.MembersErr = boom },
			wantKind: ErrAssigneeNotEligible,
		},
		{
			name:     "issue lookup fails",
			url:      issueURL,
			setup:    func(f *trackertest.Fake) { f.LookupErr = boom },
			wantKind: ErrIssueLookupFailed,
		},
		{
			name:       "assign fails",
			url:        issueURL,
			setup:      func(f *trackertest.Fake) { f.AssignErr = boom },
			wantKind:   ErrReassignmentFailed,
			wantAssign: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := trackertest.NewFake("team/backend", "bob")
			if tt.setup != nil {
				tt.setup(fake)
			}
			w := NewWorkflow(fake, zaptest.NewLogger(t))

			out := w.Execute(context.Background(), newNotification(tt.url), "bob", nil)

			assert.False(t, out.Succeeded)
			assert.False(t, out.CommentPosted)
			assert.Equal(t, tt.wantKind, out.ErrorKind)
			assert.Error(t, out.Err)
			assert.Len(t, fake.AssignCalls, tt.wantAssign)
			assert.Empty(t, fake.Comments)
		})
	}
}

func TestExecuteCommentFailureIsNonFatal(t *testing.T) {
	fake := trackertest.NewFake("team/backend", "bob")
	fake.CommentErr = errors.New("rate limited")
	w := NewWorkflow(fake, nil)

	out := w.Execute(context.Background(), newNotification(issueURL), "bob", nil)

	assert.True(t, out.Succeeded)
	assert.False(t, out.CommentPosted)
	assert.Equal(t, ErrCommentPostFailed, out.ErrorKind)
	assert.Equal(t, "bob", fake.Assignees[issueRef])
}

func TestBuildAuditComment(t *testing.T) {
	got := BuildAuditComment(tracker.KindIssue, "", "bob", ptr("Owns login."))
	want := "🤖 **Automated Assignment Update**\n" +
		"\n" +
		"This issue has been reassigned from `unassigned` to `bob` based on AI analysis.\n" +
		"\n" +
		"**AI Reasoning:**\n" +
		"Owns login.\n" +
		"\n" +
		"---\n" +
		"*This assignment was made automatically by the mailbox-monitor service.*"
	assert.Equal(t, want, got)
}

func TestBuildAuditCommentWithoutReasoning(t *testing.T) {
	got := BuildAuditComment(tracker.KindMergeRequest, "alice", "bob", ptr("  "))
	assert.NotContains(t, got, "AI Reasoning")
	assert.Contains(t, got, "This merge request has been reassigned from `alice` to `bob`")
	assert.Equal(t, got, BuildAuditComment(tracker.KindMergeRequest, "alice", "bob", nil))
}
