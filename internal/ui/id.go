package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// HighlightID returns an ID with its unique prefix highlighted.
func HighlightID(id string, prefixLen int) string {
	if id == "" {
		return id
	}

	if prefixLen <= 0 || prefixLen > len(id) {
		return id
	}

	if !ansiEnabled() {
		return id
	}

	prefix := id[:prefixLen]
	suffix := id[prefixLen:]
	return ansiBold + ansiCyan + prefix + ansiReset + suffix
}

// PrefixLength looks up the unique prefix length of id, ignoring case.
// It returns 0 when id is unknown.
func PrefixLength(lengths map[string]int, id string) int {
	if id == "" || lengths == nil {
		return 0
	}
	return lengths[strings.ToLower(id)]
}

// Highlighter returns a function that highlights IDs using lengths.
func Highlighter(lengths map[string]int) func(string) string {
	return func(id string) string {
		return HighlightID(id, PrefixLength(lengths, id))
	}
}

// ShortID returns the unique prefix of id, or the first fallback
// characters when the prefix is shorter than that.
func ShortID(id string, prefixLen, fallback int) string {
	length := prefixLen
	if length < fallback {
		length = fallback
	}
	if length <= 0 || length >= len(id) {
		return id
	}
	return id[:length]
}

func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
