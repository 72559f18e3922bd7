package task

import (
	"sort"
	"time"
)

// Stats counts tasks by state.
type Stats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

// Summarize counts tasks by status and overdue state.
func Summarize(tasks []Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	for _, item := range tasks {
		switch item.Status {
		case StatusTodo:
			stats.Todo++
		case StatusInProgress:
			stats.InProgress++
		case StatusDone:
			stats.Done++
		}
		if item.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// Pending returns the tasks that are not done.
func Pending(tasks []Task) []Task {
	var pending []Task
	for _, item := range tasks {
		if item.Status != StatusDone {
			pending = append(pending, item)
		}
	}
	return pending
}

// Completed returns the done tasks that carry a completion time.
func Completed(tasks []Task) []Task {
	var completed []Task
	for _, item := range tasks {
		if item.Status == StatusDone && item.CompletedAt != nil {
			completed = append(completed, item)
		}
	}
	return completed
}

// CalendarDay groups the tasks due on one date.
type CalendarDay struct {
	Date  string
	Tasks []Task
}

// GroupByDueDate buckets tasks by due date in ascending date order. Tasks
// without a parseable due date are returned separately, in input order.
func GroupByDueDate(tasks []Task) (days []CalendarDay, undated []Task) {
	byDate := make(map[string][]Task)
	for _, item := range tasks {
		date := NormalizeDueDate(item.DueDate)
		if date == "" {
			undated = append(undated, item)
			continue
		}
		byDate[date] = append(byDate[date], item)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days = make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		days = append(days, CalendarDay{Date: date, Tasks: byDate[date]})
	}
	return days, undated
}

// AppendScheduleNote adds a suggested working time and its reason to a
// description, separated from existing text by a blank line.
func AppendScheduleNote(description, suggestedTime, reason string) string {
	note := "Suggested time: " + suggestedTime + "\n" + reason
	if description == "" {
		return note
	}
	return description + "\n\n" + note
}
