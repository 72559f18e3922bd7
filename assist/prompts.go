package assist

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/amonks/orbit/task"
)

// Template names under templates/.
const (
	parseTemplateName     = "task-parse.tmpl"
	breakdownTemplateName = "task-breakdown.tmpl"
	dailyPlanTemplateName = "daily-plan.tmpl"
	scheduleTemplateName  = "schedule-optimize.tmpl"
)

// Token limits per operation.
const (
	parseMaxTokens     = 1024
	breakdownMaxTokens = 1024
	dailyPlanMaxTokens = 1500
	scheduleMaxTokens  = 2000
)

// isoMillisLayout matches JavaScript's Date.prototype.toISOString.
const isoMillisLayout = "2006-01-02T15:04:05.000Z"

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

var promptTemplates = template.Must(
	template.New("prompts").Option("missingkey=error").ParseFS(defaultTemplates, "templates/*.tmpl"),
)

type parsePromptData struct {
	Today string
	Input string
}

type breakdownPromptData struct {
	Title       string
	Description string
}

type dailyPlanPromptData struct {
	Today string
	Tasks string
}

type schedulePromptData struct {
	Completed string
	Pending   string
}

// pendingTaskData is the summary of an open task sent to the model.
type pendingTaskData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// completedTaskData is the summary of a finished task sent to the model.
type completedTaskData struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	CompletedAt *string `json:"completedAt"`
}

func renderPrompt(name string, data any) (string, error) {
	var out bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&out, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return internalstrings.TrimTrailingNewlines(out.String()), nil
}

func parsePrompt(input string, now time.Time) (Prompt, error) {
	text, err := renderPrompt(parseTemplateName, parsePromptData{Today: task.Today(now), Input: input})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: text, MaxTokens: parseMaxTokens}, nil
}

func breakdownPrompt(req BreakdownRequest) (Prompt, error) {
	text, err := renderPrompt(breakdownTemplateName, breakdownPromptData{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: text, MaxTokens: breakdownMaxTokens}, nil
}

func dailyPlanPrompt(tasks []task.Task, now time.Time) (Prompt, error) {
	encoded, err := encodeCompact(pendingSummaries(tasks))
	if err != nil {
		return Prompt{}, err
	}
	text, err := renderPrompt(dailyPlanTemplateName, dailyPlanPromptData{Today: task.Today(now), Tasks: encoded})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: text, MaxTokens: dailyPlanMaxTokens}, nil
}

func schedulePrompt(completed, pending []task.Task) (Prompt, error) {
	completedJSON, err := encodeCompact(completedSummaries(completed))
	if err != nil {
		return Prompt{}, err
	}
	pendingJSON, err := encodeCompact(pendingSummaries(pending))
	if err != nil {
		return Prompt{}, err
	}
	text, err := renderPrompt(scheduleTemplateName, schedulePromptData{Completed: completedJSON, Pending: pendingJSON})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: text, MaxTokens: scheduleMaxTokens}, nil
}

func pendingSummaries(tasks []task.Task) []pendingTaskData {
	summaries := make([]pendingTaskData, 0, len(tasks))
	for _, item := range tasks {
		summaries = append(summaries, pendingTaskData{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Priority:    string(item.Priority),
			DueDate:     item.DueDate,
		})
	}
	return summaries
}

func completedSummaries(tasks []task.Task) []completedTaskData {
	summaries := make([]completedTaskData, 0, len(tasks))
	for _, item := range tasks {
		summary := completedTaskData{
			Title:       item.Title,
			Description: item.Description,
			Priority:    string(item.Priority),
		}
		if item.CompletedAt != nil {
			stamp := item.CompletedAt.UTC().Format(isoMillisLayout)
			summary.CompletedAt = &stamp
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// encodeCompact marshals value without HTML escaping or a trailing newline.
func encodeCompact(value any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}
	return internalstrings.TrimTrailingNewlines(buf.String()), nil
}
