package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/decision"
	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/prediction/predictiontest"
	"github.com/similigh/mailbox-monitor/internal/reassign"
	"github.com/similigh/mailbox-monitor/internal/steps"
	"github.com/similigh/mailbox-monitor/internal/tracker"
	"github.com/similigh/mailbox-monitor/internal/tracker/trackertest"
)

type fakeMailbox struct {
	mu sync.Mutex

	emails   []pipeline.Email
	fetchErr error
	pingErr  error
	onFetch  func()

	limits []int
	seen   []string
	closed bool
}

func (f *fakeMailbox) Fetch(_ context.Context, limit int) ([]pipeline.Email, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := f.emails
	f.emails = nil
	return out, nil
}

func (f *fakeMailbox) MarkSeen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
	return nil
}

func (f *fakeMailbox) Ping(context.Context) error { return f.pingErr }

func (f *fakeMailbox) Close() error {
	f.closed = true
	return nil
}

func (f *fakeMailbox) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.limits)
}

var ref42 = tracker.Reference{Project: "team/backend", Kind: tracker.KindIssue, IID: 42}

func notificationEmail(id string) pipeline.Email {
	return pipeline.Email{
		ID:      id,
		From:    "GitLab <gitlab@git.example.com>",
		Subject: "Issue #42: Fix login bug | backend",
		Body:    "Issue was assigned to @alice\nhttps://git.example.com/team/backend/-/issues/42\n",
	}
}

type fixture struct {
	mailbox   *fakeMailbox
	predictor *predictiontest.Fake
	tracker   *trackertest.Fake
	policy    decision.Policy
}

func newFixture(emails ...pipeline.Email) *fixture {
	tr := trackertest.NewFake("team/backend", "alice", "bob")
	tr.Assignees[ref42] = "alice"
	return &fixture{
		mailbox:   &fakeMailbox{emails: emails},
		predictor: &predictiontest.Fake{Result: &prediction.Prediction{RecommendedAssignee: "bob", Confidence: 0.9}},
		tracker:   tr,
		policy:    decision.Policy{MinConfidence: 0.7},
	}
}

func (f *fixture) monitor(t *testing.T, mutate func(*Options)) *Monitor {
	t.Helper()
	logger := zaptest.NewLogger(t)

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)
	p, err := registry.BuildFromNames(pipeline.ResolveSteps(nil, "auto-assign"), &pipeline.Dependencies{
		Logger:    logger,
		Predictor: f.predictor,
		Workflow:  reassign.NewWorkflow(f.tracker, logger),
		Policy:    f.policy,
	})
	require.NoError(t, err)

	opts := Options{
		Mailbox:     f.mailbox,
		Pipeline:    p,
		Predictor:   f.predictor,
		Tracker:     f.tracker,
		MaxPerCycle: 10,
		Interval:    10 * time.Millisecond,
		Logger:      logger,
	}
	if mutate != nil {
		mutate(&opts)
	}

	m, err := New(opts)
	require.NoError(t, err)
	return m
}

func TestNewRequiresMailboxAndPipeline(t *testing.T) {
	_, err := New(Options{Pipeline: pipeline.New()})
	assert.Error(t, err)

	_, err = New(Options{Mailbox: &fakeMailbox{}})
	assert.Error(t, err)
}

func TestRunOnceMarksContentlessEmailSeen(t *testing.T) {
	f := newFixture(pipeline.Email{ID: "7"}, notificationEmail("8"))
	m := f.monitor(t, nil)

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, []string{"7", "8"}, f.mailbox.seen)
	assert.Equal(t, 1, f.predictor.Calls())
}

func TestRunOnceProcessesInMailboxOrder(t *testing.T) {
	other := pipeline.Email{ID: "2", From: "news@example.com", Subject: "Weekly digest"}
	f := newFixture(notificationEmail("1"), other, notificationEmail("3"))

	var order []string
	m := f.monitor(t, func(o *Options) {
		o.OnResult = func(r pipeline.Result) { order = append(order, r.EmailID) }
	})

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, []string{"1", "2", "3"}, order)
	assert.Equal(t, []string{"1", "2", "3"}, f.mailbox.seen)
	assert.Equal(t, []int{10}, f.mailbox.limits)

	// The first email reassigns; the second notification finds bob already assigned.
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Reassigned)
	assert.True(t, report.Results[1].Skipped)
	assert.True(t, report.Results[2].Handled)
	assert.Equal(t, 2, report.Handled)
	assert.Len(t, f.tracker.AssignCalls, 1)
	assert.NotEmpty(t, report.Results[0].RunID)
	assert.NotEqual(t, report.Results[0].RunID, report.Results[2].RunID)
}

func TestRunOnceEmptyMailbox(t *testing.T) {
	f := newFixture()
	m := f.monitor(t, nil)

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Fetched)
	assert.Empty(t, report.Results)
}

func TestRunOnceFetchError(t *testing.T) {
	f := newFixture()
	f.mailbox.fetchErr = errors.New("connection reset")
	m := f.monitor(t, nil)

	_, err := m.RunOnce(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

type failingStep struct{}

func (failingStep) Name() string                { return "failing" }
func (failingStep) Run(*pipeline.Context) error { return errors.New("boom") }

func TestRunOncePipelineErrorDoesNotStopCycle(t *testing.T) {
	f := newFixture(notificationEmail("1"), notificationEmail("2"))
	m := f.monitor(t, func(o *Options) { o.Pipeline = pipeline.New(failingStep{}) })

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.Len(t, r.Errors, 1)
	}
	assert.Equal(t, []string{"1", "2"}, f.mailbox.seen)
}

func TestRunOnceStopsWhenCancelledBetweenItems(t *testing.T) {
	f := newFixture(notificationEmail("1"), notificationEmail("2"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := f.monitor(t, func(o *Options) {
		o.ItemDelay = time.Hour
		o.OnResult = func(pipeline.Result) { cancel() }
	})

	report, err := m.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, []string{"1"}, f.mailbox.seen)
}

func TestRunFailsOnInitialHealthCheck(t *testing.T) {
	f := newFixture(notificationEmail("1"))
	f.mailbox.pingErr = errors.New("login failed")
	m := f.monitor(t, nil)

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox failed (login failed)")
	assert.Zero(t, f.mailbox.fetchCount())
}

func TestRunPollsUntilCancelled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.mailbox.onFetch = func() {
		if f.mailbox.fetchCount() >= 3 {
			cancel()
		}
	}
	m := f.monitor(t, nil)

	require.NoError(t, m.Run(ctx))
	assert.GreaterOrEqual(t, f.mailbox.fetchCount(), 3)
}

func TestRunContinuesAfterFetchError(t *testing.T) {
	f := newFixture()
	f.mailbox.fetchErr = errors.New("timeout")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.mailbox.onFetch = func() {
		if f.mailbox.fetchCount() >= 2 {
			cancel()
		}
	}
	m := f.monitor(t, nil)

	require.NoError(t, m.Run(ctx))
	assert.GreaterOrEqual(t, f.mailbox.fetchCount(), 2)
}

func TestCloseClosesMailbox(t *testing.T) {
	f := newFixture()
	m := f.monitor(t, nil)

	require.NoError(t, m.Close())
	assert.True(t, f.mailbox.closed)
}
