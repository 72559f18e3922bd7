package editor

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/amonks/orbit/task"
)

func TestRenderTaskTOML_Create(t *testing.T) {
	data := DefaultCreateData()
	content, err := RenderTaskTOML(data)
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	if !strings.Contains(content, `title = ""`) {
		t.Error("expected empty title")
	}
	if !strings.Contains(content, `priority = "medium"`) {
		t.Error("expected default priority medium")
	}
	if !strings.Contains(content, "subtasks = []") {
		t.Error("expected empty subtask list")
	}
	if !strings.Contains(content, "---") {
		t.Error("expected frontmatter separator")
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "status = ") {
			t.Error("status should not be present for create")
		}
	}
}

func TestRenderTaskTOML_Update(t *testing.T) {
	existing := &task.Task{
		ID:          "abc12345",
		Title:       `Read "Dune"`,
		Priority:    task.PriorityHigh,
		Status:      task.StatusInProgress,
		DueDate:     "2024-03-05",
		Description: "Chapters 1-3",
		Subtasks: []task.Subtask{
			{ID: "s1", Title: "Chapter 1", Completed: true},
			{ID: "s2", Title: "Chapter 2"},
		},
	}

	content, err := RenderTaskTOML(DataFromTask(existing))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	for _, want := range []string{
		`title = "Read \"Dune\""`,
		`priority = "high"`,
		`due-date = "2024-03-05"`,
		`status = "in-progress"`,
		`subtasks = ["Chapter 1", "Chapter 2"]`,
		"Chapters 1-3",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in:\n%s", want, content)
		}
	}
}

func TestRenderedTemplateRoundTrips(t *testing.T) {
	existing := &task.Task{
		Title:       "Essay",
		Priority:    task.PriorityLow,
		Status:      task.StatusTodo,
		Description: "Draft the outline.\n\nThen write.",
		Subtasks:    []task.Subtask{{Title: "Outline"}},
	}
	content, err := RenderTaskTOML(DataFromTask(existing))
	if err != nil {
		t.Fatalf("RenderTaskTOML failed: %v", err)
	}

	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Title != "Essay" || parsed.Priority != "low" {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
	if parsed.Description != existing.Description {
		t.Fatalf("expected description %q, got %q", existing.Description, parsed.Description)
	}
	if len(parsed.Subtasks) != 1 || parsed.Subtasks[0] != "Outline" {
		t.Fatalf("expected one subtask, got %v", parsed.Subtasks)
	}
}

func TestParseTaskTOML_NormalizesValues(t *testing.T) {
	content := `title = "  Quiz prep  "
priority = "HIGH"
status = "in_progress"
subtasks = ["  flashcards ", "", "   "]
---
Review notes
`

	parsed, err := ParseTaskTOML(content)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}

	if parsed.Title != "Quiz prep" {
		t.Errorf("expected trimmed title, got %q", parsed.Title)
	}
	if parsed.Priority != "high" {
		t.Errorf("expected priority high, got %q", parsed.Priority)
	}
	if parsed.Status == nil || *parsed.Status != "in-progress" {
		t.Errorf("expected status in-progress, got %v", parsed.Status)
	}
	if len(parsed.Subtasks) != 1 || parsed.Subtasks[0] != "flashcards" {
		t.Errorf("expected blank subtasks dropped, got %q", parsed.Subtasks)
	}
	if parsed.Description != "Review notes" {
		t.Errorf("expected description, got %q", parsed.Description)
	}
}

func TestParseTaskTOML_DefaultsPriority(t *testing.T) {
	parsed, err := ParseTaskTOML(`title = "x"`)
	if err != nil {
		t.Fatalf("ParseTaskTOML failed: %v", err)
	}
	if parsed.Priority != "medium" {
		t.Fatalf("expected medium priority, got %q", parsed.Priority)
	}
}

func TestParseTaskTOML_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing title",
			content: `priority = "low"`,
			wantErr: task.ErrEmptyTitle,
		},
		{
			name:    "invalid priority",
			content: "title = \"test\"\npriority = \"urgent\"",
			wantErr: task.ErrInvalidPriority,
		},
		{
			name:    "invalid due date",
			content: "title = \"test\"\ndue-date = \"next week\"",
			wantErr: task.ErrInvalidDueDate,
		},
		{
			name:    "invalid status",
			content: "title = \"test\"\nstatus = \"bad\"",
			wantErr: task.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaskTOML(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseTaskTOML_InvalidStatusListsChoices(t *testing.T) {
	_, err := ParseTaskTOML("title = \"test\"\nstatus = \"bad\"")
	if err == nil || !strings.Contains(err.Error(), "todo, in-progress, done") {
		t.Fatalf("expected error to list statuses, got %v", err)
	}
}

func TestToFields(t *testing.T) {
	parsed := &ParsedTask{
		Title:       "Test",
		Priority:    "high",
		DueDate:     "2024-03-05",
		Subtasks:    []string{"one", "two"},
		Description: "description",
	}

	fields := parsed.ToFields()

	if fields.Priority != task.PriorityHigh {
		t.Errorf("expected priority high, got %v", fields.Priority)
	}
	if fields.Status != "" {
		t.Errorf("expected status left to the store default, got %q", fields.Status)
	}
	if len(fields.Subtasks) != 2 || fields.Subtasks[1].Title != "two" {
		t.Errorf("unexpected subtasks: %+v", fields.Subtasks)
	}
}

func TestToUpdateOptionsKeepsMatchingSubtasks(t *testing.T) {
	status := "done"
	parsed := &ParsedTask{
		Title:    "Test",
		Priority: "low",
		Status:   &status,
		Subtasks: []string{"Chapter 2", "Chapter 3"},
	}
	existing := []task.Subtask{
		{ID: "s1", Title: "Chapter 1", Completed: true},
		{ID: "s2", Title: "Chapter 2", Completed: true},
	}

	opts := parsed.ToUpdateOptions(existing)

	if opts.Status == nil || *opts.Status != task.StatusDone {
		t.Fatalf("expected status done, got %v", opts.Status)
	}
	if opts.Priority == nil || *opts.Priority != task.PriorityLow {
		t.Fatalf("expected priority low, got %v", opts.Priority)
	}
	subtasks := *opts.Subtasks
	if len(subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %+v", subtasks)
	}
	if subtasks[0].ID != "s2" || !subtasks[0].Completed {
		t.Fatalf("expected Chapter 2 to keep its state, got %+v", subtasks[0])
	}
	if subtasks[1].ID != "" || subtasks[1].Completed {
		t.Fatalf("expected Chapter 3 to be new, got %+v", subtasks[1])
	}
}

func TestCreateTaskTempFileExtension(t *testing.T) {
	file, err := createTaskTempFile()
	if err != nil {
		t.Fatalf("createTaskTempFile failed: %v", err)
	}
	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	if !strings.HasSuffix(file.Name(), ".md") {
		t.Errorf("expected temp file to end with .md, got %q", file.Name())
	}
}
