// Package trackertest provides an in-memory Tracker for tests.
package trackertest

import (
	"context"
	"sync"

	"github.com/similigh/mailbox-monitor/internal/tracker"
)

// Comment is a note recorded by Fake.
type Comment struct {
	Ref  tracker.Reference
	Body string
}

// Fake is an in-memory tracker. Errors set on the struct are returned by the
// matching method.
type Fake struct {
	mu sync.Mutex

	ProjectMembers map[string][]tracker.Member
	Assignees      map[tracker.Reference]string

	MembersErr error
	LookupErr  error
	AssignErr  error
	CommentErr error
	HealthErr  error

	AssignCalls []tracker.Reference
	Comments    []Comment
}

// NewFake returns a Fake where members of project are the given usernames.
func NewFake(project string, usernames ...string) *Fake {
	members := make([]tracker.Member, 0, len(usernames))
	for i, u := range usernames {
		members = append(members, tracker.Member{ID: int64(i + 1), Username: u})
	}
	return &Fake{
		ProjectMembers: map[string][]tracker.Member{project: members},
		Assignees:      map[tracker.Reference]string{},
	}
}

func (f *Fake) Members(_ context.Context, project string) ([]tracker.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MembersErr != nil {
		return nil, f.MembersErr
	}
	return f.ProjectMembers[project], nil
}

func (f *Fake) CurrentAssignee(_ context.Context, ref tracker.Reference) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LookupErr != nil {
		return "", f.LookupErr
	}
	return f.Assignees[ref], nil
}

func (f *Fake) Assign(_ context.Context, ref tracker.Reference, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AssignCalls = append(f.AssignCalls, ref)
	if f.AssignErr != nil {
		return f.AssignErr
	}
	f.Assignees[ref] = username
	return nil
}

func (f *Fake) Comment(_ context.Context, ref tracker.Reference, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommentErr != nil {
		return f.CommentErr
	}
	f.Comments = append(f.Comments, Comment{Ref: ref, Body: body})
	return nil
}

func (f *Fake) Health(context.Context) error {
	return f.HealthErr
}

var _ tracker.Tracker = (*Fake)(nil)
