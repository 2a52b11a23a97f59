// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

package notification

import "strings"

// DefaultSenderToken is matched against the From header of candidate emails.
const DefaultSenderToken = "gitlab"

// assignmentPhrases mark a subject line as an assignment event.
var assignmentPhrases = []string{
	"assigned you",
	"assignee changed",
	"was assigned to you",
}

// IsAssignmentEmail reports whether an email looks like a tracker assignment
// notification: the sender contains the tracker's domain token, or the
// subject contains an assignment phrase. Both checks are case-insensitive.
func IsAssignmentEmail(sender, subject, senderToken string) bool {
	if senderToken == "" {
		senderToken = DefaultSenderToken
	}
	if strings.Contains(strings.ToLower(sender), strings.ToLower(senderToken)) {
		return true
	}

	lowerSubject := strings.ToLower(subject)
	for _, phrase := range assignmentPhrases {
		if strings.Contains(lowerSubject, phrase) {
			return true
		}
	}
	return false
}
