// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package gemini

import (
	"fmt"
	"strings"

	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/utils/text"
)

// buildAssigneePrompt creates a prompt asking for the best assignee of an issue.
func buildAssigneePrompt(issue prediction.IssueFields, candidates []string) string {
	var extra strings.Builder
	if issue.Priority != nil {
		extra.WriteString(fmt.Sprintf("- Priority: %s\n", *issue.Priority))
	}
	if issue.Milestone != nil {
		extra.WriteString(fmt.Sprintf("- Milestone: %s\n", *issue.Milestone))
	}

	candidateList := "(not available, choose the most plausible username)"
	if len(candidates) > 0 {
		candidateList = strings.Join(candidates, ", ")
	}

	current := issue.CurrentAssignee
	if current == "" {
		current = "unassigned"
	}

	return fmt.Sprintf(`You are an AI assistant helping engineering teams route issues to the right owner.

Issue Details:
- Project: %s
- Issue: #%s
- URL: %s
- Title: %s
- Current Assignee: %s
- Labels: %s
%s- Description: %s

Candidate Assignees (project members):
%s

Pick the single best assignee from the candidates. Only recommend a username that appears in the candidate list when one is provided.

Respond with JSON only:
{
  "recommended_assignee": "username",
  "confidence": 0.0,
  "reasoning": "one or two sentences",
  "alternatives": ["username"]
}

Confidence must be a number between 0.0 and 1.0.`,
		issue.Project,
		issue.IssueNumber,
		issue.URL,
		issue.Title,
		current,
		strings.Join(issue.Labels, ", "),
		extra.String(),
		text.Truncate(issue.Description, 1000),
		candidateList,
	)
}
