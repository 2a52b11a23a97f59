// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

package imap

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/similigh/mailbox-monitor/internal/utils/text"
)

// maxPartSize bounds how much of a single MIME part is read.
const maxPartSize = 1 << 20

// Message is a decoded email.
type Message struct {
	From    string
	Subject string
	Body    string
}

// ParseMessage decodes an RFC 5322 message. The body is the first text/plain
// part, or the first text/html part rendered to text when no plain part exists.
// Unknown charsets are tolerated and read as-is.
func ParseMessage(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = mr.Header.Get("Subject")
	}
	msg.From = formatFrom(mr.Header)

	var plain, htmlBody string
	var havePlain, haveHTML bool
	for !havePlain {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !message.IsUnknownCharset(err) {
				return nil, fmt.Errorf("failed to read message part: %w", err)
			}
			if p == nil {
				break
			}
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		mediaType, _, err := h.ContentType()
		if err != nil {
			mediaType = "text/plain"
		}

		switch {
		case mediaType == "text/plain":
			b, err := io.ReadAll(io.LimitReader(p.Body, maxPartSize))
			if err != nil {
				return nil, fmt.Errorf("failed to read text part: %w", err)
			}
			plain, havePlain = string(b), true
		case mediaType == "text/html" && !haveHTML:
			b, err := io.ReadAll(io.LimitReader(p.Body, maxPartSize))
			if err != nil {
				return nil, fmt.Errorf("failed to read html part: %w", err)
			}
			htmlBody, haveHTML = string(b), true
		}
	}

	switch {
	case havePlain:
		msg.Body = text.NormalizeNewlines(plain)
	case haveHTML:
		msg.Body = text.HTMLToText(htmlBody)
	}
	return msg, nil
}

// formatFrom renders the From header as "Name <address>", falling back to the
// raw header when it cannot be parsed.
func formatFrom(h mail.Header) string {
	addrs, err := h.AddressList("From")
	if err != nil || len(addrs) == 0 {
		raw := h.Get("From")
		if decoded, err := new(mime.WordDecoder).DecodeHeader(raw); err == nil {
			return decoded
		}
		return raw
	}

	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.Name, a.Address))
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}
