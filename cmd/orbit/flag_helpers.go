package main

import "github.com/spf13/cobra"

func hasChangedFlags(cmd *cobra.Command, flags ...string) bool {
	for _, flag := range flags {
		if cmd.Flags().Changed(flag) {
			return true
		}
	}
	return false
}

// shouldUseEditor decides whether to open $EDITOR:
// --edit forces it, --no-edit or explicit field flags skip it, and
// otherwise it opens when stdin is a terminal.
func shouldUseEditor(hasFieldFlags, edit, noEdit, interactive bool) bool {
	if edit {
		return true
	}
	if noEdit || hasFieldFlags {
		return false
	}
	return interactive
}
