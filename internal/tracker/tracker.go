// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package tracker defines the issue-tracker collaborator used to reassign issues.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

var (
	// ErrUnparseableURL is returned when a URL is not an issue or merge request link.
	ErrUnparseableURL = errors.New("unparseable issue url")

	// ErrUnsupported is returned when a tracker cannot handle a reference kind.
	ErrUnsupported = errors.New("unsupported reference")
)

// Kind distinguishes issues from merge requests.
type Kind string

const (
	KindIssue        Kind = "issue"
	KindMergeRequest Kind = "merge_request"
)

// Label returns the human-readable name of the kind.
func (k Kind) Label() string {
	if k == KindMergeRequest {
		return "merge request"
	}
	return "issue"
}

// Reference identifies one issue or merge request in a project.
type Reference struct {
	Project string
	Kind    Kind
	IID     int
}

func (r Reference) String() string {
	sep := "#"
	if r.Kind == KindMergeRequest {
		sep = "!"
	}
	return fmt.Sprintf("%s%s%d", r.Project, sep, r.IID)
}

// Member is a user who may be assigned within a project.
type Member struct {
	ID       int64
	Username string
	Name     string
}

// Tracker is the issue-tracker collaborator.
type Tracker interface {
	// Members lists the users eligible for assignment in a project.
	Members(ctx context.Context, project string) ([]Member, error)

	// CurrentAssignee returns the live assignee username, or "" when unassigned.
	CurrentAssignee(ctx context.Context, ref Reference) (string, error)

	// Assign replaces the assignee of the referenced issue.
	Assign(ctx context.Context, ref Reference, username string) error

	// Comment posts a note on the referenced issue.
	Comment(ctx context.Context, ref Reference, body string) error

	// Health verifies the tracker is reachable and the credentials work.
	Health(ctx context.Context) error
}

var issuePathPattern = regexp.MustCompile(`^/([^/]+/[^/]+)(?:/-)?/(issues|merge_requests)/(\d+)`)

// ParseIssueURL resolves an issue or merge request URL of the form
// scheme://host/<group>/<project>[/-]/{issues|merge_requests}/<id>.
func ParseIssueURL(raw string) (Reference, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrUnparseableURL, err)
	}

	m := issuePathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %s", ErrUnparseableURL, raw)
	}

	iid, err := strconv.Atoi(m[3])
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrUnparseableURL, err)
	}

	kind := KindIssue
	if m[2] == "merge_requests" {
		kind = KindMergeRequest
	}
	return Reference{Project: m[1], Kind: kind, IID: iid}, nil
}

// IsMember reports whether username appears in members.
func IsMember(members []Member, username string) bool {
	for _, m := range members {
		if m.Username == username {
			return true
		}
	}
	return false
}
