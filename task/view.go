package task

import (
	"sort"

	internalstrings "github.com/amonks/orbit/internal/strings"
)

// DeriveView returns the tasks to display for a priority filter and a
// search query. The input is not modified.
//
// Tasks are kept when they pass the filter and the trimmed, lowercased
// query occurs in their title, description, or a subtask title. The result
// is ordered by priority rank, then dated tasks before undated ones, then
// earlier due dates first. Ties keep their input order.
func DeriveView(tasks []Task, filter PriorityFilter, query string) []Task {
	query = internalstrings.NormalizeLowerTrimSpace(query)

	view := make([]Task, 0, len(tasks))
	for _, item := range tasks {
		if !filter.Matches(item.Priority) {
			continue
		}
		if !item.Matches(query) {
			continue
		}
		view = append(view, item)
	}

	sort.SliceStable(view, func(i, j int) bool {
		return compareTasks(view[i], view[j]) < 0
	})
	return view
}

func compareTasks(a, b Task) int {
	if rankA, rankB := a.Priority.Rank(), b.Priority.Rank(); rankA != rankB {
		return rankA - rankB
	}
	return compareDueDates(a.DueDate, b.DueDate)
}

// compareDueDates orders dated before undated and earlier before later.
// An unparseable date compares equal to any other date.
func compareDueDates(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	dateA, okA := ParseDueDate(a)
	dateB, okB := ParseDueDate(b)
	if !okA || !okB {
		return 0
	}
	return dateA.Compare(dateB)
}
