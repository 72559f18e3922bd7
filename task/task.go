package task

import (
	"encoding/json"
	"fmt"
	"time"

	internalstrings "github.com/amonks/orbit/internal/strings"
)

// Task represents a single unit of work.
type Task struct {
	// ID is a UUID assigned at creation. It never changes.
	ID string

	// Title is the short summary. Never blank.
	Title string

	// Description is free-form text, possibly empty.
	Description string

	// DueDate is "" or a calendar date in YYYY-MM-DD form.
	DueDate string

	// Priority is high, medium, or low.
	Priority Priority

	// Status is todo, in-progress, or done.
	Status Status

	// Subtasks is an ordered checklist.
	Subtasks []Subtask

	// CreatedAt is when the task was created, at millisecond precision.
	CreatedAt time.Time

	// CompletedAt is set exactly when Status is done.
	CompletedAt *time.Time
}

// Subtask is a checklist item belonging to a task. Its completion is
// independent of the parent's status.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// taskJSON is the persisted and wire form of a Task. Timestamps are epoch
// milliseconds.
type taskJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Subtasks    []Subtask `json:"subtasks"`
	CreatedAt   int64     `json:"createdAt"`
	CompletedAt *int64    `json:"completedAt,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	wire := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		Subtasks:    t.Subtasks,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
	if wire.Subtasks == nil {
		wire.Subtasks = []Subtask{}
	}
	if t.CompletedAt != nil {
		ms := t.CompletedAt.UnixMilli()
		wire.CompletedAt = &ms
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Task) UnmarshalJSON(data []byte) error {
	var wire taskJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	*t = Task{
		ID:          wire.ID,
		Title:       wire.Title,
		Description: wire.Description,
		DueDate:     wire.DueDate,
		Priority:    wire.Priority,
		Status:      wire.Status,
		Subtasks:    wire.Subtasks,
		CreatedAt:   time.UnixMilli(wire.CreatedAt),
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if wire.CompletedAt != nil {
		completed := time.UnixMilli(*wire.CompletedAt)
		t.CompletedAt = &completed
	}
	return nil
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	clone := t
	clone.Subtasks = append([]Subtask{}, t.Subtasks...)
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	return clone
}

// Overdue reports whether the task is not done and its due date is before
// the calendar day of now.
func (t Task) Overdue(now time.Time) bool {
	if t.Status == StatusDone {
		return false
	}
	due, ok := ParseDueDate(t.DueDate)
	if !ok {
		return false
	}
	return due.Format(DateLayout) < Today(now)
}

// SubtaskProgress returns the number of completed subtasks and the total.
func (t Task) SubtaskProgress() (completed, total int) {
	for _, subtask := range t.Subtasks {
		if subtask.Completed {
			completed++
		}
	}
	return completed, len(t.Subtasks)
}

// Matches reports whether query (already trimmed and lowercased) occurs in
// the title, the description, or any subtask title. An empty query matches.
func (t Task) Matches(query string) bool {
	if query == "" {
		return true
	}
	if internalstrings.ContainsLower(t.Title, query) || internalstrings.ContainsLower(t.Description, query) {
		return true
	}
	for _, subtask := range t.Subtasks {
		if internalstrings.ContainsLower(subtask.Title, query) {
			return true
		}
	}
	return false
}
