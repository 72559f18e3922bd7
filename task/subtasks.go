package task

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/orbit/internal/ids"
	internalstrings "github.com/amonks/orbit/internal/strings"
)

// The helpers below return new checklists for whole-list replacement via
// UpdateOptions.Subtasks. They never modify their input.

// AppendSubtasks returns subtasks followed by one incomplete subtask per
// non-blank title, each with an ID from newID.
func AppendSubtasks(subtasks []Subtask, titles []string, newID func() string) []Subtask {
	next := append([]Subtask{}, subtasks...)
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		next = append(next, Subtask{ID: newID(), Title: title})
	}
	return next
}

// ResolveSubtask finds a subtask by 1-based position or by ID prefix.
func ResolveSubtask(subtasks []Subtask, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrSubtaskNotFound
	}
	if position, err := strconv.Atoi(ref); err == nil {
		if position < 1 || position > len(subtasks) {
			return -1, fmt.Errorf("%w: position %d of %d", ErrSubtaskNotFound, position, len(subtasks))
		}
		return position - 1, nil
	}

	subtaskIDs := make([]string, 0, len(subtasks))
	for _, subtask := range subtasks {
		subtaskIDs = append(subtaskIDs, subtask.ID)
	}
	match, found, ambiguous := ids.MatchPrefixNormalized(ids.NormalizeUniqueIDs(subtaskIDs), ref)
	if !found {
		return -1, fmt.Errorf("%w: %s", ErrSubtaskNotFound, ref)
	}
	if ambiguous {
		return -1, fmt.Errorf("ambiguous subtask reference: %s", ref)
	}
	for i, subtask := range subtasks {
		if internalstrings.NormalizeLowerTrimSpace(subtask.ID) == match {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrSubtaskNotFound, ref)
}

// ToggleSubtask flips the completion of the subtask at index.
func ToggleSubtask(subtasks []Subtask, index int) ([]Subtask, error) {
	if index < 0 || index >= len(subtasks) {
		return nil, ErrSubtaskNotFound
	}
	next := append([]Subtask{}, subtasks...)
	next[index].Completed = !next[index].Completed
	return next, nil
}

// RenameSubtask retitles the subtask at index.
func RenameSubtask(subtasks []Subtask, index int, title string) ([]Subtask, error) {
	if index < 0 || index >= len(subtasks) {
		return nil, ErrSubtaskNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptySubtaskTitle
	}
	next := append([]Subtask{}, subtasks...)
	next[index].Title = title
	return next, nil
}

// RemoveSubtask drops the subtask at index.
func RemoveSubtask(subtasks []Subtask, index int) ([]Subtask, error) {
	if index < 0 || index >= len(subtasks) {
		return nil, ErrSubtaskNotFound
	}
	next := make([]Subtask, 0, len(subtasks)-1)
	next = append(next, subtasks[:index]...)
	return append(next, subtasks[index+1:]...), nil
}

// MoveSubtask moves the subtask at index to a 1-based position, clamped to
// the list bounds.
func MoveSubtask(subtasks []Subtask, index, position int) ([]Subtask, error) {
	if index < 0 || index >= len(subtasks) {
		return nil, ErrSubtaskNotFound
	}
	target := position - 1
	if target < 0 {
		target = 0
	}
	if target > len(subtasks)-1 {
		target = len(subtasks) - 1
	}
	moved := subtasks[index]
	next, _ := RemoveSubtask(subtasks, index)
	next = append(next[:target], append([]Subtask{moved}, next[target:]...)...)
	return next, nil
}
