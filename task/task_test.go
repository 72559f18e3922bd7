package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTaskJSONUsesEpochMilliseconds(t *testing.T) {
	created := time.Date(2024, 3, 2, 9, 12, 0, 0, time.UTC)
	completed := created.Add(90 * time.Minute)
	item := Task{
		ID:          "t1",
		Title:       "Quiz",
		Priority:    PriorityHigh,
		Status:      StatusDone,
		CreatedAt:   created,
		CompletedAt: &completed,
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	encoded := string(data)
	if !strings.Contains(encoded, `"createdAt":1709370720000`) {
		t.Fatalf("expected epoch ms createdAt, got %s", encoded)
	}
	if !strings.Contains(encoded, `"completedAt":1709376120000`) {
		t.Fatalf("expected epoch ms completedAt, got %s", encoded)
	}
	if !strings.Contains(encoded, `"subtasks":[]`) {
		t.Fatalf("expected empty subtask array, got %s", encoded)
	}

	var decoded Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.CreatedAt.Equal(created) || !decoded.CompletedAt.Equal(completed) {
		t.Fatalf("unexpected timestamps %v %v", decoded.CreatedAt, decoded.CompletedAt)
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		item Task
		want bool
	}{
		{name: "past due", item: Task{DueDate: "2024-03-09", Status: StatusTodo}, want: true},
		{name: "due today", item: Task{DueDate: "2024-03-10", Status: StatusTodo}, want: false},
		{name: "future", item: Task{DueDate: "2024-03-11", Status: StatusInProgress}, want: false},
		{name: "done", item: Task{DueDate: "2024-03-01", Status: StatusDone}, want: false},
		{name: "undated", item: Task{Status: StatusTodo}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Overdue(now); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskSubtaskProgress(t *testing.T) {
	item := Task{Subtasks: []Subtask{{Completed: true}, {}, {Completed: true}}}

	done, total := item.SubtaskProgress()
	if done != 2 || total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", done, total)
	}
}

func TestNormalizeDueDate(t *testing.T) {
	tests := map[string]string{
		"2024-03-05":           "2024-03-05",
		"2024-03-05T14:00:00Z": "2024-03-05",
		"2024-03-05T14:00:00":  "2024-03-05",
		"tomorrow":             "",
		"":                     "",
	}
	for input, want := range tests {
		if got := NormalizeDueDate(input); got != want {
			t.Fatalf("NormalizeDueDate(%q) = %q, want %q", input, got, want)
		}
	}
}
