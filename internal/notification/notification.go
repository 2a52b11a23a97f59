// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package notification turns tracker assignment emails into structured issue data.
package notification

// IssueNotification holds the fields recovered from one assignment email.
// A nil pointer means the field was not found; a non-nil pointer to an empty
// string means the field was found but blank. Labels follows the same rule:
// nil when no labels marker exists, empty when the marker had no entries.
type IssueNotification struct {
	URL             *string  `json:"url,omitempty"`
	Title           *string  `json:"title,omitempty"`
	IssueNumber     *string  `json:"issue_number,omitempty"`
	CurrentAssignee *string  `json:"current_assignee,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Project         *string  `json:"project,omitempty"`
	Priority        *string  `json:"priority,omitempty"`
	Milestone       *string  `json:"milestone,omitempty"`
}

// GetURL returns the URL field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetURL() string {
	if n == nil {
		return ""
	}
	return deref(n.URL)
}

// GetTitle returns the Title field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetTitle() string {
	if n == nil {
		return ""
	}
	return deref(n.Title)
}

// GetIssueNumber returns the IssueNumber field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetIssueNumber() string {
	if n == nil {
		return ""
	}
	return deref(n.IssueNumber)
}

// GetCurrentAssignee returns the CurrentAssignee field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetCurrentAssignee() string {
	if n == nil {
		return ""
	}
	return deref(n.CurrentAssignee)
}

// GetDescription returns the Description field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetDescription() string {
	if n == nil {
		return ""
	}
	return deref(n.Description)
}

// GetProject returns the Project field if it's non-nil, zero value otherwise.
func (n *IssueNotification) GetProject() string {
	if n == nil {
		return ""
	}
	return deref(n.Project)
}

// HasURL reports whether an issue reference was extracted.
func (n *IssueNotification) HasURL() bool {
	return n != nil && n.URL != nil
}

// IsEmpty reports whether no field at all was extracted.
func (n *IssueNotification) IsEmpty() bool {
	return n.URL == nil && n.Title == nil && n.IssueNumber == nil &&
		n.CurrentAssignee == nil && n.Description == nil && n.Labels == nil &&
		n.Project == nil && n.Priority == nil && n.Milestone == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
