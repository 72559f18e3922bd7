// Package task implements a personal task list persisted as a single
// snapshot.
//
// The whole collection is held in memory and every mutation rewrites the
// snapshot under one fixed storage key. The public API mirrors the CLI
// commands:
//   - Create, Update, Delete, Start, Finish, Reopen for the task lifecycle
//   - Tasks, Get, Resolve, View for querying
//   - DeriveView for filtering, searching and ordering a collection
package task

import (
	"fmt"

	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/amonks/orbit/internal/validation"
)

// Status represents the state of a task.
type Status string

const (
	// StatusTodo indicates the task has not been started.
	StatusTodo Status = "todo"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "in-progress"

	// StatusDone indicates the task is finished.
	StatusDone Status = "done"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Priority represents the importance of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium" // default
	PriorityLow    Priority = "low"
)

// ValidPriorities returns all valid priorities, most important first.
func ValidPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank returns the sort rank for a priority: high=1, medium=2, low=3.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// PriorityFilter selects tasks by priority. FilterAll disables filtering.
type PriorityFilter string

// FilterAll matches every priority.
const FilterAll PriorityFilter = "all"

// Matches reports whether p passes the filter.
func (f PriorityFilter) Matches(p Priority) bool {
	return f == FilterAll || f == "" || Priority(f) == p
}

// ParsePriorityFilter parses "all" or a priority name. Blank input means "all".
func ParsePriorityFilter(value string) (PriorityFilter, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	if normalized == "" || normalized == string(FilterAll) {
		return FilterAll, nil
	}
	if !Priority(normalized).IsValid() {
		return "", fmt.Errorf("%w: %q (want all, high, medium, or low)", ErrInvalidPriority, value)
	}
	return PriorityFilter(normalized), nil
}

// ParsePriority normalizes and validates a priority name.
func ParsePriority(value string) (Priority, error) {
	normalized := Priority(internalstrings.NormalizeLowerTrimSpace(value))
	if !normalized.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidPriority, Priority(value), ValidPriorities())
	}
	return normalized, nil
}

// ParseStatus normalizes and validates a status name. Underscores and
// spaces are accepted in place of the hyphen in "in-progress".
func ParseStatus(value string) (Status, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(value)
	switch normalized {
	case "in_progress", "in progress", "inprogress":
		normalized = string(StatusInProgress)
	}
	status := Status(normalized)
	if !status.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidStatus, Status(value), ValidStatuses())
	}
	return status, nil
}

// PriorityPtr returns a pointer to p.
func PriorityPtr(p Priority) *Priority {
	return &p
}

// StatusPtr returns a pointer to s.
func StatusPtr(s Status) *Status {
	return &s
}
