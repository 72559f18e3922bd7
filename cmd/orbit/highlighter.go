package main

import (
	"github.com/amonks/orbit/internal/ui"
)

func taskHighlighter(prefixLengths map[string]int) func(string) string {
	if prefixLengths == nil {
		prefixLengths = map[string]int{}
	}
	return ui.Highlighter(prefixLengths)
}
