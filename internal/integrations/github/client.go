// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package github implements the issue tracker on top of the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/tracker"
)

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
	logger *zap.Logger
}

// splitRepo splits "owner/repo".
func splitRepo(project string) (string, string, error) {
	parts := strings.Split(project, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected 'owner/repo'", project)
	}
	return parts[0], parts[1], nil
}

// issueRef validates that ref points at a GitHub issue.
func issueRef(ref tracker.Reference) (string, string, error) {
	if ref.Kind != tracker.KindIssue {
		return "", "", fmt.Errorf("%w: github tracker handles issues only, got %s", tracker.ErrUnsupported, ref.Kind.Label())
	}
	return splitRepo(ref.Project)
}

// Members lists the collaborators of a repository.
func (c *Client) Members(ctx context.Context, project string) ([]tracker.Member, error) {
	owner, repo, err := splitRepo(project)
	if err != nil {
		return nil, err
	}

	opt := &github.ListCollaboratorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var members []tracker.Member
	for {
		users, resp, err := c.client.Repositories.ListCollaborators(ctx, owner, repo, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to list collaborators: %w", err)
		}
		for _, u := range users {
			members = append(members, tracker.Member{ID: u.GetID(), Username: u.GetLogin(), Name: u.GetName()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return members, nil
}

// CurrentAssignee fetches the issue and returns its assignee login.
func (c *Client) CurrentAssignee(ctx context.Context, ref tracker.Reference) (string, error) {
	owner, repo, err := issueRef(ref)
	if err != nil {
		return "", err
	}

	issue, _, err := c.client.Issues.Get(ctx, owner, repo, ref.IID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch issue: %w", err)
	}
	if issue.Assignee != nil {
		return issue.Assignee.GetLogin(), nil
	}
	if len(issue.Assignees) > 0 {
		return issue.Assignees[0].GetLogin(), nil
	}
	return "", nil
}

// Assign replaces the issue assignees with username.
func (c *Client) Assign(ctx context.Context, ref tracker.Reference, username string) error {
	owner, repo, err := issueRef(ref)
	if err != nil {
		return err
	}

	req := &github.IssueRequest{Assignees: &[]string{username}}
	if _, _, err := c.client.Issues.Edit(ctx, owner, repo, ref.IID, req); err != nil {
		return fmt.Errorf("failed to assign issue: %w", err)
	}

	c.logger.Info("Assigned", zap.Stringer("ref", ref), zap.String("assignee", username))
	return nil
}

// Comment posts a comment on an issue.
func (c *Client) Comment(ctx context.Context, ref tracker.Reference, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}
	owner, repo, err := issueRef(ref)
	if err != nil {
		return err
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	_, _, err = c.client.Issues.CreateComment(ctx, owner, repo, ref.IID, comment)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// Health fetches the authenticated user.
func (c *Client) Health(ctx context.Context) error {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("github health check failed: %w", err)
	}
	c.logger.Debug("GitHub health check passed", zap.String("user", user.GetLogin()))
	return nil
}

var _ tracker.Tracker = (*Client)(nil)
