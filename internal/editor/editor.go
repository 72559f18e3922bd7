// Package editor opens task forms in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

const fallbackEditor = "vi"

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// editorCommand returns the editor program and its leading arguments.
// $VISUAL wins over $EDITOR; values like "code --wait" are split on spaces.
func editorCommand(getenv func(string) string) (string, []string) {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(getenv(name)); len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return fallbackEditor, nil
}

// Edit opens path in the user's editor and waits for it to exit.
func Edit(path string) error {
	program, args := editorCommand(os.Getenv)

	cmd := exec.Command(program, append(args, path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %s exited with status %d", program, exitErr.ExitCode())
		}
		return fmt.Errorf("run editor %s: %w", program, err)
	}
	return nil
}
