package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/amonks/orbit/assist"
	"github.com/amonks/orbit/internal/config"
	"github.com/amonks/orbit/internal/ids"
	"github.com/amonks/orbit/internal/ui"
	"github.com/amonks/orbit/task"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Plan and create tasks with a language model",
	Long: `Plan and create tasks with a language model.

Requests go straight to the configured provider, or to a running
"orbit serve" when [assist] endpoint is set.`,
}

var aiAddCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Create a task from a free-text description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAIAdd,
}

var aiBreakdownCmd = &cobra.Command{
	Use:   "breakdown <task>",
	Short: "Suggest subtasks for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIBreakdown,
}

var aiBreakdownApply bool

var aiPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Suggest an order of work for today",
	Args:  cobra.NoArgs,
	RunE:  runAIPlan,
}

var aiOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Suggest when to work on pending tasks, based on completed ones",
	Args:  cobra.NoArgs,
	RunE:  runAIOptimize,
}

var aiOptimizeApply bool

func init() {
	rootCmd.AddCommand(aiCmd)
	aiCmd.AddCommand(aiAddCmd, aiBreakdownCmd, aiPlanCmd, aiOptimizeCmd)

	aiBreakdownCmd.Flags().BoolVar(&aiBreakdownApply, "apply", false, "Append the suggested subtasks to the task")
	aiOptimizeCmd.Flags().BoolVar(&aiOptimizeApply, "apply", false, "Append each suggested time to its task's description")
}

const aiTextWidth = 80

// newAssistant returns a client for the configured endpoint, or a service
// calling the provider directly.
func newAssistant(cfg config.Assist, logger *zap.SugaredLogger) (assist.Assistant, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if cfg.Endpoint != "" {
		return assist.NewClient(cfg.Endpoint, &http.Client{Timeout: timeout}), nil
	}
	completer, err := assist.NewCompleter(cfg)
	if err != nil {
		if errors.Is(err, assist.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w (set [assist] api-key, %s, or [assist] endpoint)", err, apiKeyEnvVar(cfg.Provider))
		}
		return nil, err
	}
	return assist.NewService(completer, assist.ServiceOptions{Logger: logger}), nil
}

func apiKeyEnvVar(provider string) string {
	if strings.EqualFold(provider, assist.ProviderOpenAI) {
		return config.OpenAIAPIKeyEnvVar
	}
	return config.AnthropicAPIKeyEnvVar
}

func openAISession() (*session, assist.Assistant, error) {
	sess, err := openSession()
	if err != nil {
		return nil, nil, err
	}
	assistant, err := newAssistant(sess.cfg.Assist, sess.logger)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}
	return sess, assistant, nil
}

func runAIAdd(cmd *cobra.Command, args []string) error {
	sess, assistant, err := openAISession()
	if err != nil {
		return err
	}
	defer sess.Close()

	draft, err := assistant.ParseTask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	created, err := sess.store.Create(draft.Fields())
	if err != nil {
		return err
	}

	fmt.Printf("Created task %s: %s\n", sess.highlighter()(created.ID), created.Title)
	fmt.Printf("Priority: %s\n", ui.Priority(string(created.Priority)))
	if created.DueDate != "" {
		fmt.Printf("Due:      %s\n", created.DueDate)
	}
	if created.Description != "" {
		fmt.Printf("\n%s\n", renderMarkdownOrDash(created.Description, aiTextWidth))
	}
	return nil
}

func runAIBreakdown(cmd *cobra.Command, args []string) error {
	sess, assistant, err := openAISession()
	if err != nil {
		return err
	}
	defer sess.Close()

	existing, err := sess.resolve(args[0])
	if err != nil {
		return err
	}

	titles, err := assistant.Breakdown(cmd.Context(), assist.BreakdownRequest{
		TaskID:      existing.ID,
		Title:       existing.Title,
		Description: existing.Description,
	})
	if err != nil {
		return err
	}

	highlight := sess.highlighter()
	fmt.Printf("Suggested subtasks for %s: %s\n", highlight(existing.ID), existing.Title)
	for i, title := range titles {
		fmt.Printf("  %d. %s\n", i+1, title)
	}

	if !aiBreakdownApply {
		return nil
	}
	next := task.AppendSubtasks(existing.Subtasks, titles, ids.New)
	updated, err := sess.store.Update(existing.ID, task.UpdateOptions{Subtasks: &next})
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, args[0])
	}
	fmt.Printf("Added %d subtasks to %s\n", len(next)-len(existing.Subtasks), highlight(updated.ID))
	return nil
}

func runAIPlan(cmd *cobra.Command, args []string) error {
	sess, assistant, err := openAISession()
	if err != nil {
		return err
	}
	defer sess.Close()

	pending := task.Pending(sess.store.View(task.FilterAll, ""))
	plan, err := assistant.DailyPlan(cmd.Context(), pending)
	if err != nil {
		return err
	}

	fmt.Println(ui.Header("Plan"))
	fmt.Println(indentBlock(renderMarkdownOrDash(plan.Plan, aiTextWidth-2), 2))

	if len(plan.RecommendedOrder) > 0 {
		fmt.Println()
		fmt.Println(ui.Header("Recommended order"))
		byID := tasksByID(pending)
		highlight := sess.highlighter()
		for i, id := range plan.RecommendedOrder {
			if item, ok := byID[id]; ok {
				fmt.Printf("  %d. %s %s\n", i+1, highlight(item.ID), item.Title)
				continue
			}
			fmt.Printf("  %d. %s\n", i+1, id)
		}
	}

	if strings.TrimSpace(plan.Reasoning) != "" {
		fmt.Println()
		fmt.Println(ui.Header("Reasoning"))
		fmt.Println(indentBlock(reflowParagraphs(plan.Reasoning, aiTextWidth-2), 2))
	}
	return nil
}

func runAIOptimize(cmd *cobra.Command, args []string) error {
	sess, assistant, err := openAISession()
	if err != nil {
		return err
	}
	defer sess.Close()

	all := sess.store.Tasks()
	pending := task.Pending(all)
	schedule, err := assistant.OptimizeSchedule(cmd.Context(), task.Completed(all), pending)
	if err != nil {
		return err
	}

	byID := tasksByID(pending)
	highlight := sess.highlighter()
	fmt.Println(ui.Header("Suggested schedule"))
	if len(schedule.Suggestions) == 0 {
		fmt.Println("  No suggestions.")
	}
	for _, suggestion := range schedule.Suggestions {
		label := suggestion.TaskID
		if item, ok := byID[suggestion.TaskID]; ok {
			label = highlight(item.ID) + " " + item.Title
		}
		fmt.Printf("  %s\n", label)
		fmt.Printf("    when: %s\n", suggestion.SuggestedTime)
		if suggestion.Reason != "" {
			fmt.Println(indentBlock(reflowParagraphs("why: "+suggestion.Reason, aiTextWidth-4), 4))
		}
	}

	if strings.TrimSpace(schedule.Insights) != "" {
		fmt.Println()
		fmt.Println(ui.Header("Insights"))
		fmt.Println(indentBlock(reflowParagraphs(schedule.Insights, aiTextWidth-2), 2))
	}

	if !aiOptimizeApply {
		return nil
	}
	applied := 0
	for _, suggestion := range schedule.Suggestions {
		item, ok := byID[suggestion.TaskID]
		if !ok {
			sess.logger.Warnw("skipping suggestion for unknown task", "taskId", suggestion.TaskID)
			continue
		}
		description := task.AppendScheduleNote(item.Description, suggestion.SuggestedTime, suggestion.Reason)
		if _, err := sess.store.Update(item.ID, task.UpdateOptions{Description: &description}); err != nil {
			return err
		}
		item.Description = description
		byID[item.ID] = item
		applied++
	}
	fmt.Printf("\nApplied %d suggestions\n", applied)
	return nil
}

func tasksByID(tasks []task.Task) map[string]task.Task {
	byID := make(map[string]task.Task, len(tasks))
	for _, item := range tasks {
		byID[item.ID] = item
	}
	return byID
}
