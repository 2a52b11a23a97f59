// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

package text

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags start and end on their own line when rendered as text.
var blockTags = map[string]bool{
	"p": true, "div": true, "tr": true, "li": true, "ul": true, "ol": true,
	"table": true, "blockquote": true, "section": true, "header": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "pre": true, "hr": true,
}

// HTMLToText renders an HTML document as plain text.
// Script and style content is dropped, block elements become line breaks and
// link targets are kept next to their anchor text so URLs hidden behind
// "View it on GitLab" style links are still visible to the extractor.
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))

	var sb strings.Builder
	skipDepth := 0
	href := ""
	anchorStart := -1

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)

			switch tag {
			case "script", "style", "title":
				if tt == html.StartTagToken {
					skipDepth++
				}
			case "br":
				sb.WriteByte('\n')
			case "td", "th":
				sb.WriteByte(' ')
			case "a":
				href = ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = string(val)
					}
				}
				anchorStart = sb.Len()
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)

			switch tag {
			case "script", "style", "title":
				if skipDepth > 0 {
					skipDepth--
				}
			case "a":
				if anchorStart >= 0 && isWebLink(href) && !strings.Contains(sb.String()[anchorStart:], href) {
					sb.WriteString(" (" + href + ")")
				}
				href = ""
				anchorStart = -1
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			sb.Write(z.Text())
		}
	}
}

func isWebLink(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// collapseWhitespace squeezes runs of spaces inside each line and keeps at
// most one blank line in a row. Blank lines are meaningful to the extractor
// (they terminate a description block), so they are not removed entirely.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
