package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/amonks/orbit/task"
)

// TaskData represents the data used to render the TOML template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	// ID is the task ID (only for updates).
	ID string
	// Title is the task title.
	Title string
	// Priority is high, medium, or low.
	Priority string
	// Status is the task status (only for updates).
	Status string
	// DueDate is "" or YYYY-MM-DD.
	DueDate string
	// Subtasks lists checklist item titles in order.
	Subtasks []string
	// Description is the task description.
	Description string
}

// DefaultCreateData returns TaskData with default values for creating a new task.
func DefaultCreateData() TaskData {
	return TaskData{
		Priority: string(task.PriorityMedium),
	}
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t *task.Task) TaskData {
	subtasks := make([]string, 0, len(t.Subtasks))
	for _, subtask := range t.Subtasks {
		subtasks = append(subtasks, subtask.Title)
	}
	return TaskData{
		IsUpdate:    true,
		ID:          t.ID,
		Title:       t.Title,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		Subtasks:    subtasks,
		Description: t.Description,
	}
}

var taskTemplate = template.Must(template.New("task").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}).Parse(`title = {{ quote .Title }}
priority = {{ quote .Priority }} # high, medium, low
due-date = {{ quote .DueDate }} # YYYY-MM-DD, or empty
{{- if .IsUpdate }}
status = {{ quote .Status }} # todo, in-progress, done
{{- end }}
subtasks = [{{ range $i, $s := .Subtasks }}{{ if $i }}, {{ end }}{{ quote $s }}{{ end }}]
---
{{ .Description }}
`))

// RenderTaskTOML renders the task data as a TOML string for editing.
func RenderTaskTOML(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask represents the parsed result from the TOML editor output.
type ParsedTask struct {
	Title       string   `toml:"title"`
	Priority    string   `toml:"priority"`
	DueDate     string   `toml:"due-date"`
	Status      *string  `toml:"status"`
	Subtasks    []string `toml:"subtasks"`
	Description string
}

// ParseTaskTOML parses the TOML content from the editor.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedTask
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Description = internalstrings.TrimTrailingNewlines(strings.TrimLeft(body, "\n"))
	parsed.DueDate = strings.TrimSpace(parsed.DueDate)

	if err := task.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	priority := task.PriorityMedium
	if strings.TrimSpace(parsed.Priority) != "" {
		p, err := task.ParsePriority(parsed.Priority)
		if err != nil {
			return nil, err
		}
		priority = p
	}
	parsed.Priority = string(priority)
	if err := task.ValidateDueDate(parsed.DueDate); err != nil {
		return nil, err
	}
	if parsed.Status != nil {
		status, err := task.ParseStatus(*parsed.Status)
		if err != nil {
			return nil, err
		}
		normalized := string(status)
		parsed.Status = &normalized
	}

	subtasks := parsed.Subtasks[:0]
	for _, title := range parsed.Subtasks {
		if title = strings.TrimSpace(title); title != "" {
			subtasks = append(subtasks, title)
		}
	}
	parsed.Subtasks = subtasks

	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	frontmatter := strings.Join(lines[:separatorIndex], "\n")
	body := strings.Join(lines[separatorIndex+1:], "\n")
	return frontmatter, body
}

func createTaskTempFile() (*os.File, error) {
	return os.CreateTemp("", "orbit-task-*.md")
}

// EditTask opens the editor for a task and returns the parsed result.
// For create: pass nil for existing.
// For update: pass the existing task.
func EditTask(existing *task.Task) (*ParsedTask, error) {
	var data TaskData
	if existing == nil {
		data = DefaultCreateData()
	} else {
		data = DataFromTask(existing)
	}
	return EditTaskWithData(data)
}

// EditTaskWithData opens the editor with pre-populated data and returns the parsed result.
func EditTaskWithData(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := createTaskTempFile()
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseTaskTOML(string(edited))
}

// ToFields converts a ParsedTask to task creation fields.
func (p *ParsedTask) ToFields() task.Fields {
	fields := task.Fields{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		Priority:    task.Priority(p.Priority),
	}
	if p.Status != nil {
		fields.Status = task.Status(*p.Status)
	}
	for _, title := range p.Subtasks {
		fields.Subtasks = append(fields.Subtasks, task.Subtask{Title: title})
	}
	return fields
}

// ToUpdateOptions converts a ParsedTask to task.UpdateOptions. Subtasks
// whose title matches one of existing's keep its ID and completion.
func (p *ParsedTask) ToUpdateOptions(existing []task.Subtask) task.UpdateOptions {
	priority := task.Priority(p.Priority)
	opts := task.UpdateOptions{
		Title:       &p.Title,
		Description: &p.Description,
		DueDate:     &p.DueDate,
		Priority:    &priority,
	}
	if p.Status != nil {
		status := task.Status(*p.Status)
		opts.Status = &status
	}

	used := make([]bool, len(existing))
	subtasks := make([]task.Subtask, 0, len(p.Subtasks))
	for _, title := range p.Subtasks {
		next := task.Subtask{Title: title}
		for i, prior := range existing {
			if !used[i] && prior.Title == title {
				used[i] = true
				next = prior
				break
			}
		}
		subtasks = append(subtasks, next)
	}
	opts.Subtasks = &subtasks
	return opts
}
