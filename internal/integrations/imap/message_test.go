package imap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestParseMessagePlain(t *testing.T) {
	raw := crlf(`From: GitLab <gitlab@git.example.com>
To: dev@example.com
Subject: Issue #42: Fix login bug | backend
Content-Type: text/plain; charset=utf-8

View it on GitLab: https://git.example.com/team/backend/-/issues/42
Assignee: @alice
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "GitLab <gitlab@git.example.com>", msg.From)
	assert.Equal(t, "Issue #42: Fix login bug | backend", msg.Subject)
	assert.Contains(t, msg.Body, "https://git.example.com/team/backend/-/issues/42\nAssignee: @alice")
	assert.NotContains(t, msg.Body, "\r")
}

func TestParseMessagePrefersPlainPart(t *testing.T) {
	raw := crlf(`From: gitlab@git.example.com
Subject: =?utf-8?q?Caf=C3=A9_=28#7=29_=7C_web?=
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html; charset=utf-8

<p>HTML version</p>
--b1
Content-Type: text/plain; charset=utf-8

Plain version
--b1--
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Café (#7) | web", msg.Subject)
	assert.Equal(t, "Plain version", strings.TrimSpace(msg.Body))
}

func TestParseMessageHTMLOnly(t *testing.T) {
	raw := crlf(`From: gitlab@git.example.com
Subject: Assignee changed
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html; charset=utf-8
Content-Transfer-Encoding: quoted-printable

<p>Assignee: @bob</p><p><a href=3D"https://git.example.com/a/b/-/issues/9">View it on GitLab</a></p>
--b1--
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Assignee: @bob")
	assert.Contains(t, msg.Body, "https://git.example.com/a/b/-/issues/9")
	assert.NotContains(t, msg.Body, "<p>")
}

func TestParseMessageSkipsAttachments(t *testing.T) {
	raw := crlf(`From: gitlab@git.example.com
Subject: report
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="b1"

--b1
Content-Type: text/plain
Content-Disposition: attachment; filename="log.txt"

attached text
--b1
Content-Type: text/plain

inline text
--b1--
`)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "inline text", strings.TrimSpace(msg.Body))
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage(strings.NewReader("not a header line without colon\r\n\r\n"))
	assert.Error(t, err)
}
