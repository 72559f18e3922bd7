package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/amonks/orbit/internal/ui"
	"github.com/amonks/orbit/task"
)

// printTaskTable prints tasks in a table format.
func printTaskTable(tasks []task.Task, prefixLengths map[string]int, now time.Time) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	fmt.Print(formatTaskTable(tasks, prefixLengths, ui.HighlightID, now))
}

func formatTaskTable(tasks []task.Task, prefixLengths map[string]int, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "PRI", "STATUS", "DUE", "SUBTASKS", "AGE", "TITLE"}, len(tasks))

	if prefixLengths == nil {
		prefixLengths = task.NewIDIndex(tasks).PrefixLengths()
	}

	for _, t := range tasks {
		prefixLen := ui.PrefixLength(prefixLengths, t.ID)
		row := []string{
			highlight(ui.ShortID(t.ID, prefixLen, shortIDLength), prefixLen),
			ui.Priority(string(t.Priority)),
			ui.Status(string(t.Status)),
			formatDue(t, now),
			formatSubtaskProgress(t),
			ui.FormatTimeAgeShort(t.CreatedAt, now),
			ui.TruncateTableCell(t.Title),
		}
		builder.AddRow(row)
	}

	return builder.String()
}

// shortIDLength is the minimum number of ID characters shown in tables.
const shortIDLength = 8

func formatDue(t task.Task, now time.Time) string {
	due, ok := task.ParseDueDate(t.DueDate)
	if !ok {
		return "-"
	}
	if t.Overdue(now) {
		return ui.Alert(due.Format(task.DateLayout) + " overdue")
	}
	return due.Format(task.DateLayout)
}

func formatSubtaskProgress(t task.Task) string {
	completed, total := t.SubtaskProgress()
	if total == 0 {
		return "-"
	}
	return strconv.Itoa(completed) + "/" + strconv.Itoa(total)
}

// daysUntil counts calendar days from now's date to date.
func daysUntil(date time.Time, now time.Time) int {
	today, _ := time.Parse(task.DateLayout, task.Today(now))
	return int(date.Sub(today).Hours() / 24)
}
