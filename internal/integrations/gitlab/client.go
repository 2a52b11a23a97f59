// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package gitlab implements the issue tracker on top of the GitLab API.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xanzy/go-gitlab"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/tracker"
)

// Client wraps the GitLab API client.
type Client struct {
	client *gitlab.Client
	logger *zap.Logger
}

// Options configures the GitLab client.
type Options struct {
	BaseURL    string
	Token      string
	MaxRetries int
	Timeout    time.Duration // per request, ignored when HTTPClient is set
	HTTPClient *http.Client
	Limiter    gitlab.RateLimiter
	Logger     *zap.Logger
}

// NewClient creates a new GitLab client.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}

	clientOpts := []gitlab.ClientOptionFunc{
		gitlab.WithCustomRetryMax(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil && opts.Timeout > 0 {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if httpClient != nil {
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(httpClient))
	}
	if opts.Limiter != nil {
		clientOpts = append(clientOpts, gitlab.WithCustomLimiter(opts.Limiter))
	}

	client, err := gitlab.NewClient(opts.Token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{client: client, logger: logger.Named("gitlab")}, nil
}

// Members lists every member of a project, including inherited members.
func (c *Client) Members(ctx context.Context, project string) ([]tracker.Member, error) {
	opt := &gitlab.ListProjectMembersOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	var members []tracker.Member
	for {
		page, resp, err := c.client.ProjectMembers.ListAllProjectMembers(project, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s: %w", project, err)
		}
		for _, m := range page {
			members = append(members, tracker.Member{ID: int64(m.ID), Username: m.Username, Name: m.Name})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	c.logger.Debug("Retrieved project members", zap.String("project", project), zap.Int("count", len(members)))
	return members, nil
}

// CurrentAssignee returns the assignee username of an issue or merge request.
func (c *Client) CurrentAssignee(ctx context.Context, ref tracker.Reference) (string, error) {
	switch ref.Kind {
	case tracker.KindMergeRequest:
		mr, _, err := c.client.MergeRequests.GetMergeRequest(ref.Project, ref.IID, &gitlab.GetMergeRequestsOptions{}, gitlab.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to get merge request %s: %w", ref, err)
		}
		if mr.Assignee != nil {
			return mr.Assignee.Username, nil
		}
		if len(mr.Assignees) > 0 && mr.Assignees[0] != nil {
			return mr.Assignees[0].Username, nil
		}
		return "", nil
	default:
		issue, _, err := c.client.Issues.GetIssue(ref.Project, ref.IID, gitlab.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to get issue %s: %w", ref, err)
		}
		if issue.Assignee != nil {
			return issue.Assignee.Username, nil
		}
		if len(issue.Assignees) > 0 && issue.Assignees[0] != nil {
			return issue.Assignees[0].Username, nil
		}
		return "", nil
	}
}

// Assign replaces the assignees of an issue or merge request with username.
func (c *Client) Assign(ctx context.Context, ref tracker.Reference, username string) error {
	userID, err := c.userID(ctx, username)
	if err != nil {
		return err
	}
	ids := []int{userID}

	switch ref.Kind {
	case tracker.KindMergeRequest:
		_, _, err = c.client.MergeRequests.UpdateMergeRequest(ref.Project, ref.IID,
			&gitlab.UpdateMergeRequestOptions{AssigneeIDs: &ids}, gitlab.WithContext(ctx))
	default:
		_, _, err = c.client.Issues.UpdateIssue(ref.Project, ref.IID,
			&gitlab.UpdateIssueOptions{AssigneeIDs: &ids}, gitlab.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("failed to assign %s to %s: %w", ref, username, err)
	}

	c.logger.Info("Assigned", zap.Stringer("ref", ref), zap.String("assignee", username))
	return nil
}

// Comment posts a note on an issue or merge request.
func (c *Client) Comment(ctx context.Context, ref tracker.Reference, body string) error {
	var err error
	switch ref.Kind {
	case tracker.KindMergeRequest:
		_, _, err = c.client.Notes.CreateMergeRequestNote(ref.Project, ref.IID,
			&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	default:
		_, _, err = c.client.Notes.CreateIssueNote(ref.Project, ref.IID,
			&gitlab.CreateIssueNoteOptions{Body: gitlab.Ptr(body)}, gitlab.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("failed to comment on %s: %w", ref, err)
	}
	return nil
}

// Health checks the token by fetching the authenticated user.
func (c *Client) Health(ctx context.Context) error {
	user, _, err := c.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("gitlab health check failed: %w", err)
	}
	c.logger.Debug("GitLab health check passed", zap.String("user", user.Username))
	return nil
}

func (c *Client) userID(ctx context.Context, username string) (int, error) {
	users, _, err := c.client.Users.ListUsers(&gitlab.ListUsersOptions{Username: gitlab.Ptr(username)}, gitlab.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to look up user %s: %w", username, err)
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("user not found: %s", username)
	}
	return users[0].ID, nil
}

var _ tracker.Tracker = (*Client)(nil)
