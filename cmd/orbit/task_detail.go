package main

import (
	"fmt"
	"time"

	"github.com/amonks/orbit/internal/ui"
	"github.com/amonks/orbit/task"
)

// printTaskDetail prints detailed information about a task.
func printTaskDetail(t task.Task, highlight func(string) string, now time.Time) {
	fmt.Printf("ID:       %s\n", highlight(t.ID))
	fmt.Printf("Title:    %s\n", t.Title)
	fmt.Printf("Status:   %s\n", ui.Status(string(t.Status)))
	fmt.Printf("Priority: %s\n", ui.Priority(string(t.Priority)))
	if due, ok := task.ParseDueDate(t.DueDate); ok {
		when := ui.FormatDaysUntil(daysUntil(due, now))
		if t.Overdue(now) {
			when = ui.Alert("overdue, " + when)
		}
		fmt.Printf("Due:      %s (%s)\n", due.Format(task.DateLayout), when)
	}
	fmt.Printf("Created:  %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	if t.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if len(t.Subtasks) > 0 {
		completed, total := t.SubtaskProgress()
		fmt.Printf("\nSubtasks (%d/%d):\n", completed, total)
		printSubtaskList(t.Subtasks)
	}

	if t.Description != "" {
		fmt.Printf("\nDescription:\n%s\n", formatTaskDescription(t.Description))
	}
}

func printSubtaskList(subtasks []task.Subtask) {
	for i, subtask := range subtasks {
		mark := " "
		if subtask.Completed {
			mark = "x"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, mark, subtask.Title)
	}
}

const taskDetailLineWidth = 80

func formatTaskDescription(value string) string {
	return renderMarkdownOrDash(value, taskDetailLineWidth)
}
