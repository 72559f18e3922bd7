// Package assist implements the language-model features: turning free text
// into a task, breaking a task into subtasks, planning the day, and
// suggesting when to work on pending tasks.
package assist

import (
	"context"
	"time"

	"go.uber.org/zap"

	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/amonks/orbit/task"
)

// MinCompletedForSchedule is the completion history OptimizeSchedule needs.
const MinCompletedForSchedule = 5

// Assistant is the set of AI operations available to the CLI and server.
type Assistant interface {
	ParseTask(ctx context.Context, input string) (TaskDraft, error)
	Breakdown(ctx context.Context, req BreakdownRequest) ([]string, error)
	DailyPlan(ctx context.Context, pending []task.Task) (DailyPlan, error)
	OptimizeSchedule(ctx context.Context, completed, pending []task.Task) (Schedule, error)
}

// TaskDraft is a task extracted from free text, ready to be created.
type TaskDraft struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     string        `json:"dueDate"`
	Priority    task.Priority `json:"priority"`
	Status      task.Status   `json:"status"`
}

// Fields converts the draft into task creation fields.
func (d TaskDraft) Fields() task.Fields {
	return task.Fields{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Status:      d.Status,
	}
}

// BreakdownRequest identifies the task to split into subtasks.
type BreakdownRequest struct {
	// TaskID scopes stale-response detection in Client. It is not sent to
	// the model.
	TaskID      string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DailyPlan is a suggested order of work for today.
type DailyPlan struct {
	Plan             string   `json:"plan"`
	RecommendedOrder []string `json:"recommendedOrder"`
	Reasoning        string   `json:"reasoning"`
}

// Suggestion is a proposed time to work on one task.
type Suggestion struct {
	TaskID        string `json:"taskId"`
	SuggestedTime string `json:"suggestedTime"`
	Reason        string `json:"reason"`
}

// Schedule holds per-task time suggestions and observations about the
// user's completion history.
type Schedule struct {
	Suggestions []Suggestion `json:"schedule"`
	Insights    string       `json:"insights"`
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Service runs the AI operations against a Completer.
type Service struct {
	completer Completer
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewService creates a Service.
func NewService(completer Completer, opts ServiceOptions) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{completer: completer, now: now, logger: logger}
}

type parseReply struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
}

// ParseTask extracts a task from free text.
//
// The reply is normalized: a missing title falls back to the input, the
// due date is reduced to YYYY-MM-DD or dropped, an unknown priority becomes
// medium, and the status is always todo.
func (s *Service) ParseTask(ctx context.Context, input string) (TaskDraft, error) {
	if err := validateParseInput(input); err != nil {
		return TaskDraft{}, err
	}
	prompt, err := parsePrompt(input, s.now())
	if err != nil {
		return TaskDraft{}, err
	}

	var reply parseReply
	if err := s.complete(ctx, "task-parse", prompt, &reply); err != nil {
		return TaskDraft{}, err
	}
	return normalizeDraft(reply, input), nil
}

func normalizeDraft(reply parseReply, input string) TaskDraft {
	title := internalstrings.NormalizeWhitespace(reply.Title)
	if title == "" {
		title = internalstrings.NormalizeWhitespace(input)
	}
	priority, err := task.ParsePriority(reply.Priority)
	if err != nil {
		priority = task.PriorityMedium
	}
	return TaskDraft{
		Title:       internalstrings.Truncate(title, task.MaxTitleLength),
		Description: internalstrings.TrimTrailingNewlines(reply.Description),
		DueDate:     task.NormalizeDueDate(reply.DueDate),
		Priority:    priority,
		Status:      task.StatusTodo,
	}
}

// Breakdown suggests subtask titles for a task. Blank suggestions are
// dropped; a reply with none left is ErrNoSubtasks.
func (s *Service) Breakdown(ctx context.Context, req BreakdownRequest) ([]string, error) {
	if err := validateBreakdown(req); err != nil {
		return nil, err
	}
	prompt, err := breakdownPrompt(req)
	if err != nil {
		return nil, err
	}

	var reply []string
	if err := s.complete(ctx, "task-breakdown", prompt, &reply); err != nil {
		return nil, err
	}
	return cleanSubtaskTitles(reply)
}

func cleanSubtaskTitles(titles []string) ([]string, error) {
	cleaned := make([]string, 0, len(titles))
	for _, title := range titles {
		title = internalstrings.NormalizeWhitespace(title)
		if title == "" {
			continue
		}
		cleaned = append(cleaned, title)
	}
	if len(cleaned) == 0 {
		return nil, ErrNoSubtasks
	}
	return cleaned, nil
}

// DailyPlan suggests an order of work for today across pending tasks.
func (s *Service) DailyPlan(ctx context.Context, pending []task.Task) (DailyPlan, error) {
	if err := validateDailyPlan(pending); err != nil {
		return DailyPlan{}, err
	}
	prompt, err := dailyPlanPrompt(pending, s.now())
	if err != nil {
		return DailyPlan{}, err
	}

	var plan DailyPlan
	if err := s.complete(ctx, "daily-plan", prompt, &plan); err != nil {
		return DailyPlan{}, err
	}
	if plan.RecommendedOrder == nil {
		plan.RecommendedOrder = []string{}
	}
	return plan, nil
}

// OptimizeSchedule suggests when to work on each pending task based on
// when past tasks were completed. It needs MinCompletedForSchedule
// completed tasks and at least one pending task; both are checked before
// the model is called.
func (s *Service) OptimizeSchedule(ctx context.Context, completed, pending []task.Task) (Schedule, error) {
	if err := validateSchedule(completed, pending); err != nil {
		return Schedule{}, err
	}
	prompt, err := schedulePrompt(completed, pending)
	if err != nil {
		return Schedule{}, err
	}

	var schedule Schedule
	if err := s.complete(ctx, "schedule-optimize", prompt, &schedule); err != nil {
		return Schedule{}, err
	}
	if schedule.Suggestions == nil {
		schedule.Suggestions = []Suggestion{}
	}
	return schedule, nil
}

func (s *Service) complete(ctx context.Context, operation string, prompt Prompt, dest any) error {
	start := s.now()
	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warnw("completion failed", "operation", operation, "error", err)
		return err
	}
	s.logger.Debugw("completion finished",
		"operation", operation,
		"maxTokens", prompt.MaxTokens,
		"replyBytes", len(reply),
		"elapsed", s.now().Sub(start).String(),
	)
	if err := ExtractJSON(reply, dest); err != nil {
		s.logger.Warnw("unparseable completion", "operation", operation, "reply", internalstrings.Truncate(reply, maxErrorBodyLength))
		return err
	}
	return nil
}

func validateParseInput(input string) error {
	if internalstrings.IsBlank(input) {
		return ErrMissingInput
	}
	return nil
}

func validateBreakdown(req BreakdownRequest) error {
	if internalstrings.IsBlank(req.Title) {
		return ErrMissingTask
	}
	return nil
}

func validateDailyPlan(pending []task.Task) error {
	if len(pending) == 0 {
		return ErrNoTasksToPlan
	}
	return nil
}

func validateSchedule(completed, pending []task.Task) error {
	if len(completed) < MinCompletedForSchedule {
		return ErrNotEnoughHistory
	}
	if len(pending) == 0 {
		return ErrNoPendingTasks
	}
	return nil
}
