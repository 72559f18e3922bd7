package main

import (
	"strings"

	"github.com/amonks/orbit/internal/markdown"
	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/muesli/reflow/wordwrap"
)

func renderMarkdownOrDash(value string, width int) string {
	if width < 1 {
		width = 1
	}
	formatted := string(markdown.SafeRender(width, 0, []byte(value)))
	if strings.TrimSpace(formatted) == "" {
		return "-"
	}
	return formatted
}

// reflowParagraphs wraps each blank-line separated paragraph to width.
func reflowParagraphs(value string, width int) string {
	value = strings.TrimSpace(internalstrings.NormalizeNewlines(value))
	if value == "" {
		return ""
	}
	var wrapped []string
	for _, paragraph := range strings.Split(value, "\n\n") {
		normalized := internalstrings.NormalizeWhitespace(paragraph)
		if normalized == "" {
			continue
		}
		wrapped = append(wrapped, wordwrap.String(normalized, width))
	}
	return strings.Join(wrapped, "\n\n")
}

// indentBlock prefixes each line with spaces.
func indentBlock(value string, spaces int) string {
	if spaces <= 0 || value == "" {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
