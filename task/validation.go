package task

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds task and subtask titles, in runes.
const MaxTitleLength = 500

var (
	// ErrEmptyTitle is returned when a task title is empty after trimming.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrEmptySubtaskTitle is returned when a subtask title is empty after trimming.
	ErrEmptySubtaskTitle = errors.New("subtask title cannot be empty")

	// ErrInvalidStatus is returned when an invalid status is provided.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority is returned when an invalid priority is provided.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidDueDate is returned when a due date is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")

	// ErrTaskNotFound is returned when a task with the given ID doesn't exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousTaskIDPrefix is returned when an ID prefix matches multiple tasks.
	ErrAmbiguousTaskIDPrefix = errors.New("ambiguous task ID prefix")

	// ErrSubtaskNotFound is returned when a subtask reference matches nothing.
	ErrSubtaskNotFound = errors.New("subtask not found")

	// ErrCorruptSnapshot is returned when the stored snapshot cannot be parsed.
	ErrCorruptSnapshot = errors.New("corrupt task snapshot")
)

// ValidateTitle checks that title is non-blank and not too long.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	if length := utf8.RuneCountInString(trimmed); length > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, length, MaxTitleLength)
	}
	return nil
}

// ValidateDueDate accepts "" or a calendar date in YYYY-MM-DD form.
func ValidateDueDate(dueDate string) error {
	if dueDate == "" {
		return nil
	}
	if _, ok := parseDate(dueDate); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDueDate, dueDate)
	}
	return nil
}

// ValidateSubtasks checks every subtask title.
func ValidateSubtasks(subtasks []Subtask) error {
	for _, subtask := range subtasks {
		trimmed := strings.TrimSpace(subtask.Title)
		if trimmed == "" {
			return ErrEmptySubtaskTitle
		}
		if length := utf8.RuneCountInString(trimmed); length > MaxTitleLength {
			return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, length, MaxTitleLength)
		}
	}
	return nil
}
