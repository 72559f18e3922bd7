// Package main implements the orbit CLI tool.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "orbit",
	Short:        "Orbit - tasks, subtasks, and AI planning",
	SilenceUsage: true,
}

var rootEphemeral bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootEphemeral, "ephemeral", false, "Keep tasks in memory only; nothing is saved")
}
