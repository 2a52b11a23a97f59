// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

package notification

import (
	"regexp"
	"strings"

	"github.com/similigh/mailbox-monitor/internal/utils/text"
)

// MaxDescriptionLength caps the extracted description, in characters.
const MaxDescriptionLength = 500

// matcher returns the first capture group of a pattern, or false.
type matcher func(s string) (string, bool)

func pattern(expr string) matcher {
	re := regexp.MustCompile(expr)
	return func(s string) (string, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return "", false
		}
		if len(m) > 1 {
			return m[1], true
		}
		return m[0], true
	}
}

// firstMatch applies matchers in order and returns the first success.
func firstMatch(s string, matchers []matcher) (string, bool) {
	for _, m := range matchers {
		if v, ok := m(s); ok {
			return v, true
		}
	}
	return "", false
}

var (
	urlMatchers = []matcher{
		pattern(`https?://\S+/(?:issues|merge_requests)/\d+`),
	}

	// Most specific subject layouts first. The last pattern accepts any
	// "TITLE | ..." subject, so anything before the first pipe becomes the
	// title when none of the stricter layouts apply.
	titleMatchers = []matcher{
		pattern(`Issue #\d+:\s*(.+?)\s*\|`),
		pattern(`(.+?)\s*\(#\d+\)\s*\|`),
		pattern(`(.+?)\s*-\s*Issue #\d+`),
		pattern(`(.+?)\s*\|\s*`),
	}

	issueNumberMatchers = []matcher{
		pattern(`#(\d+)`),
	}

	assigneeMatchers = []matcher{
		pattern(`(?i)assigned to\s+@?(\S+)`),
		pattern(`(?i)assignee:\s*@?(\S+)`),
	}

	descriptionMatchers = []matcher{
		pattern(`(?is)(?:Description|Summary):\s*\n(.*?)(?:\n\n|\n---|\nAssignee)`),
	}

	labelMatchers = []matcher{
		pattern(`(?i)Labels?:\s*([^\n]+)`),
	}

	projectMatchers = []matcher{
		pattern(`(?i)(?:Project|Repository):\s*([^\n]+)`),
	}

	priorityMatchers = []matcher{
		pattern(`(?i)Priority:\s*([^\n]+)`),
	}

	milestoneMatchers = []matcher{
		pattern(`(?i)Milestone:\s*([^\n]+)`),
	}
)

// Extract recovers issue fields from an email subject and plain-text body.
// Every field is extracted independently; a missing field never prevents the
// others from being found. Extract never fails: with no matches at all it
// returns a notification whose fields are all absent.
func Extract(subject, body string) IssueNotification {
	body = text.NormalizeNewlines(body)
	subject = strings.TrimSpace(text.NormalizeNewlines(subject))

	var n IssueNotification

	if v, ok := firstMatch(body, urlMatchers); ok {
		n.URL = &v
	}
	if v, ok := firstMatch(subject, titleMatchers); ok {
		n.Title = trimmed(v)
	}
	if v, ok := firstMatch(subject, issueNumberMatchers); ok {
		n.IssueNumber = &v
	}
	if v, ok := firstMatch(body, assigneeMatchers); ok {
		n.CurrentAssignee = trimmed(v)
	}
	if v, ok := firstMatch(body, descriptionMatchers); ok {
		d := text.Truncate(strings.TrimSpace(v), MaxDescriptionLength)
		n.Description = &d
	}
	if v, ok := firstMatch(body, labelMatchers); ok {
		n.Labels = splitLabels(v)
	}
	if v, ok := firstMatch(body, projectMatchers); ok {
		n.Project = trimmed(v)
	}
	if v, ok := firstMatch(body, priorityMatchers); ok {
		n.Priority = trimmed(v)
	}
	if v, ok := firstMatch(body, milestoneMatchers); ok {
		n.Milestone = trimmed(v)
	}

	return n
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}

// splitLabels splits a comma-separated label line, dropping empty entries.
// The result is never nil so a present-but-empty marker stays distinguishable
// from a missing one.
func splitLabels(line string) []string {
	labels := []string{}
	for _, l := range strings.Split(line, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
