// ABOUTME: HTML utilities for turning feed markup into plain text
// ABOUTME: Used to produce the one-line post summaries shown in result lists

package html

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML removes tags, drops script and style bodies, decodes entities and
// collapses whitespace
func StripHTML(markup string) string {
	if markup == "" {
		return ""
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read
			return CollapseWhitespace(sb.String())
		case html.StartTagToken:
			if isSkipped(tokenizer) {
				skipDepth++
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			if isSkipped(tokenizer) && skipDepth > 0 {
				skipDepth--
			}
			sb.WriteByte(' ')
		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

func isSkipped(tokenizer *html.Tokenizer) bool {
	name, _ := tokenizer.TagName()
	tag := string(name)
	return tag == "script" || tag == "style"
}

// CollapseWhitespace trims s and replaces every whitespace run with a single space
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, ending with an ellipsis when cut
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
