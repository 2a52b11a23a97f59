// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-13
// Last Modified: 2026-10-16

package text

import (
	"strings"
	"unicode/utf8"
)

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
// Mail bodies arrive with CRLF; the extraction patterns are written against LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Truncate limits s to at most maxRunes characters.
// It counts runes, not bytes, so multi-byte text is never split mid-character.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
