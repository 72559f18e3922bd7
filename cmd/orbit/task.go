package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amonks/orbit/internal/editor"
	"github.com/amonks/orbit/internal/ui"
	"github.com/amonks/orbit/task"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

// task create
var taskCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task.

By default, opens $EDITOR to edit a TOML representation of the task
when running interactively. Use --no-edit to skip the editor, or
--edit to force opening the editor even when not interactive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskCreate,
}

var (
	taskCreatePriority    = newPriorityValue(task.PriorityMedium)
	taskCreateDescription string
	taskCreateDue         string
	taskCreateSubtasks    []string
	taskCreateEdit        bool
	taskCreateNoEdit      bool
)

// task update
var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>...",
	Short: "Update one or more tasks",
	Long: `Update one or more tasks.

By default, opens $EDITOR to edit a TOML representation of the task
when running interactively and no update flags are provided (one editor session per ID).
Use --no-edit to skip the editor, or --edit to force opening the editor even when not interactive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskUpdate,
}

var (
	taskUpdateTitle       string
	taskUpdateDescription string
	taskUpdateDue         string
	taskUpdatePriority    = newPriorityValue(task.PriorityMedium)
	taskUpdateStatus      statusValue
	taskUpdateEdit        bool
	taskUpdateNoEdit      bool
)

// task start
var taskStartCmd = &cobra.Command{
	Use:   "start <id>...",
	Short: "Mark one or more tasks as in progress",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskStart,
}

// task finish
var taskFinishCmd = &cobra.Command{
	Use:   "finish <id>...",
	Short: "Mark one or more tasks as done",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskFinish,
}

// task reopen
var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>...",
	Short: "Move one or more tasks back to todo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskReopen,
}

// task delete
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more tasks",
	Long: `Delete one or more tasks.

Asks for confirmation when running interactively. Use --yes to skip the prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskDelete,
}

var taskDeleteYes bool

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// task list
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks by priority and due date",
	Long: `List tasks.

Tasks are ordered by priority (high first), then by due date with undated
tasks last. --search matches titles, descriptions, and subtask titles.`,
	Args: cobra.NoArgs,
	RunE: runTaskList,
}

var (
	taskListPriority priorityFilterValue
	taskListSearch   string
	taskListStatus   statusValue
	taskListJSON     bool
)

// task stats
var taskStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count tasks by status",
	Args:  cobra.NoArgs,
	RunE:  runTaskStats,
}

var taskStatsJSON bool

// task calendar
var taskCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show tasks grouped by due date",
	Args:  cobra.NoArgs,
	RunE:  runTaskCalendar,
}

var taskCalendarMonth string

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskCreateCmd, taskUpdateCmd, taskStartCmd, taskFinishCmd, taskReopenCmd,
		taskDeleteCmd, taskShowCmd, taskListCmd, taskStatsCmd, taskCalendarCmd)

	// task create flags
	taskCreateCmd.Flags().VarP(taskCreatePriority, "priority", "p", "Priority (high, medium, low)")
	taskCreateCmd.Flags().StringVarP(&taskCreateDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	taskCreateCmd.Flags().StringVar(&taskCreateDue, "due", "", "Due date (YYYY-MM-DD, today, tomorrow)")
	taskCreateCmd.Flags().StringArrayVar(&taskCreateSubtasks, "subtask", nil, "Subtask title (repeatable)")
	taskCreateCmd.Flags().BoolVarP(&taskCreateEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	taskCreateCmd.Flags().BoolVar(&taskCreateNoEdit, "no-edit", false, "Do not open $EDITOR")

	// task update flags
	taskUpdateCmd.Flags().StringVar(&taskUpdateTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateDue, "due", "", "New due date (YYYY-MM-DD, today, tomorrow, or none)")
	taskUpdateCmd.Flags().VarP(taskUpdatePriority, "priority", "p", "New priority (high, medium, low)")
	taskUpdateCmd.Flags().Var(&taskUpdateStatus, "status", "New status (todo, in-progress, done)")
	taskUpdateCmd.Flags().BoolVarP(&taskUpdateEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	taskUpdateCmd.Flags().BoolVar(&taskUpdateNoEdit, "no-edit", false, "Do not open $EDITOR")

	// task delete flags
	taskDeleteCmd.Flags().BoolVarP(&taskDeleteYes, "yes", "y", false, "Delete without asking")

	// task show flags
	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")

	// task list flags
	taskListCmd.Flags().Var(&taskListPriority, "priority", "Filter by priority (all, high, medium, low)")
	taskListCmd.Flags().StringVarP(&taskListSearch, "search", "s", "", "Filter by text in title, description, or subtasks")
	taskListCmd.Flags().Var(&taskListStatus, "status", "Filter by status (todo, in-progress, done)")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")

	// task stats flags
	taskStatsCmd.Flags().BoolVar(&taskStatsJSON, "json", false, "Output as JSON")

	// task calendar flags
	taskCalendarCmd.Flags().StringVar(&taskCalendarMonth, "month", "", "Only show this month (YYYY-MM)")
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(taskCreateDescription, os.Stdin)
		if err != nil {
			return err
		}
		taskCreateDescription = desc
	}
	due, err := resolveDueDate(taskCreateDue, time.Now())
	if err != nil {
		return err
	}

	var fields task.Fields
	if shouldUseEditor(false, taskCreateEdit, taskCreateNoEdit, editor.IsInteractive()) {
		data := editor.DefaultCreateData()
		if len(args) > 0 {
			data.Title = args[0]
		}
		data.Priority = taskCreatePriority.String()
		data.DueDate = due
		data.Subtasks = taskCreateSubtasks
		data.Description = taskCreateDescription

		parsed, err := editor.EditTaskWithData(data)
		if err != nil {
			return err
		}
		fields = parsed.ToFields()
	} else {
		if len(args) == 0 {
			return fmt.Errorf("title is required (use --edit to open editor)")
		}
		fields = task.Fields{
			Title:       args[0],
			Description: taskCreateDescription,
			DueDate:     due,
			Priority:    taskCreatePriority.value,
		}
		for _, title := range taskCreateSubtasks {
			fields.Subtasks = append(fields.Subtasks, task.Subtask{Title: title})
		}
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	created, err := sess.store.Create(fields)
	if err != nil {
		return err
	}

	highlight := sess.highlighter()
	fmt.Printf("Created task %s: %s\n", highlight(created.ID), created.Title)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	hasFieldFlags := hasChangedFlags(cmd, "title", "description", "due", "priority", "status")
	useEditor := shouldUseEditor(hasFieldFlags, taskUpdateEdit, taskUpdateNoEdit, editor.IsInteractive())
	if !useEditor && !hasFieldFlags {
		return fmt.Errorf("no updates specified (use --title, --description, --due, --priority, --status, or --edit)")
	}

	var opts task.UpdateOptions
	if !useEditor {
		var err error
		opts, err = updateOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, ref := range args {
		existing, err := sess.resolve(ref)
		if err != nil {
			return err
		}

		itemOpts := opts
		if useEditor {
			parsed, err := editor.EditTask(&existing)
			if err != nil {
				return err
			}
			itemOpts = parsed.ToUpdateOptions(existing.Subtasks)
		}

		updated, err := sess.store.Update(existing.ID, itemOpts)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("%w: %s", task.ErrTaskNotFound, ref)
		}
		fmt.Printf("Updated task %s: %s\n", sess.highlighter()(updated.ID), updated.Title)
	}
	return nil
}

func updateOptionsFromFlags(cmd *cobra.Command) (task.UpdateOptions, error) {
	var opts task.UpdateOptions
	if cmd.Flags().Changed("title") {
		opts.Title = &taskUpdateTitle
	}
	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(taskUpdateDescription, os.Stdin)
		if err != nil {
			return opts, err
		}
		opts.Description = &desc
	}
	if cmd.Flags().Changed("due") {
		due, err := resolveDueDate(taskUpdateDue, time.Now())
		if err != nil {
			return opts, err
		}
		opts.DueDate = &due
	}
	if cmd.Flags().Changed("priority") {
		opts.Priority = task.PriorityPtr(taskUpdatePriority.value)
	}
	if cmd.Flags().Changed("status") {
		opts.Status = task.StatusPtr(taskUpdateStatus.value)
	}
	return opts, nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	return transitionTasks(args, "Started", (*task.Store).Start)
}

func runTaskFinish(cmd *cobra.Command, args []string) error {
	return transitionTasks(args, "Finished", (*task.Store).Finish)
}

func runTaskReopen(cmd *cobra.Command, args []string) error {
	return transitionTasks(args, "Reopened", (*task.Store).Reopen)
}

func transitionTasks(args []string, verb string, apply func(*task.Store, string) (*task.Task, error)) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	highlight := sess.highlighter()
	for _, ref := range args {
		existing, err := sess.resolve(ref)
		if err != nil {
			return err
		}
		updated, err := apply(sess.store, existing.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("%w: %s", task.ErrTaskNotFound, ref)
		}
		fmt.Printf("%s task %s: %s\n", verb, highlight(updated.ID), updated.Title)
	}
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	highlight := sess.highlighter()
	confirm := !taskDeleteYes && editor.IsInteractive()
	reader := bufio.NewReader(os.Stdin)
	for _, ref := range args {
		existing, err := sess.resolve(ref)
		if err != nil {
			return err
		}
		if confirm {
			ok, err := confirmPrompt(reader, os.Stdout, fmt.Sprintf("Delete task %s (%s)?", highlight(existing.ID), existing.Title))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("Skipped task %s\n", highlight(existing.ID))
				continue
			}
		}
		if _, err := sess.store.Delete(existing.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s: %s\n", highlight(existing.ID), existing.Title)
	}
	return nil
}

func confirmPrompt(reader *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	items := make([]task.Task, 0, len(args))
	for _, ref := range args {
		item, err := sess.resolve(ref)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	if taskShowJSON {
		return encodeJSONToStdout(items)
	}

	highlight := sess.highlighter()
	now := time.Now()
	for i, item := range items {
		if i > 0 {
			fmt.Println("---")
		}
		printTaskDetail(item, highlight, now)
	}
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	items := sess.store.View(taskListPriority.value, taskListSearch)
	if cmd.Flags().Changed("status") {
		filtered := items[:0]
		for _, item := range items {
			if item.Status == taskListStatus.value {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if taskListJSON {
		if items == nil {
			items = []task.Task{}
		}
		return encodeJSONToStdout(items)
	}

	printTaskTable(items, sess.store.PrefixLengths(), time.Now())
	return nil
}

func runTaskStats(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	stats := task.Summarize(sess.store.Tasks(), time.Now())
	if taskStatsJSON {
		return encodeJSONToStdout(stats)
	}

	rows := [][]string{
		{"total", fmt.Sprint(stats.Total)},
		{ui.Status(string(task.StatusTodo)), fmt.Sprint(stats.Todo)},
		{ui.Status(string(task.StatusInProgress)), fmt.Sprint(stats.InProgress)},
		{ui.Status(string(task.StatusDone)), fmt.Sprint(stats.Done)},
		{"overdue", fmt.Sprint(stats.Overdue)},
	}
	fmt.Print(ui.FormatTable([]string{"STATUS", "COUNT"}, rows))
	return nil
}

func runTaskCalendar(cmd *cobra.Command, args []string) error {
	var month string
	if taskCalendarMonth != "" {
		parsed, err := parseMonth(taskCalendarMonth)
		if err != nil {
			return err
		}
		month = parsed.Format("2006-01")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	days, undated := task.GroupByDueDate(sess.store.View(task.FilterAll, ""))
	fmt.Print(formatCalendar(days, undated, month, sess.store.PrefixLengths(), time.Now()))
	return nil
}

func formatCalendar(days []task.CalendarDay, undated []task.Task, month string, prefixLengths map[string]int, now time.Time) string {
	var builder strings.Builder
	shown := 0
	for _, day := range days {
		if month != "" && !strings.HasPrefix(day.Date, month+"-") {
			continue
		}
		date, err := time.Parse(task.DateLayout, day.Date)
		if err != nil {
			continue
		}
		if shown > 0 {
			builder.WriteByte('\n')
		}
		shown++
		heading := fmt.Sprintf("%s %s (%s)", day.Date, date.Format("Mon"), ui.FormatDaysUntil(daysUntil(date, now)))
		builder.WriteString(ui.Header(heading) + "\n")
		for _, item := range day.Tasks {
			builder.WriteString(formatCalendarLine(item, prefixLengths, now) + "\n")
		}
	}

	if month == "" && len(undated) > 0 {
		if shown > 0 {
			builder.WriteByte('\n')
		}
		shown++
		builder.WriteString(ui.Header("No due date") + "\n")
		for _, item := range undated {
			builder.WriteString(formatCalendarLine(item, prefixLengths, now) + "\n")
		}
	}

	if shown == 0 {
		return "No tasks found.\n"
	}
	return builder.String()
}

func formatCalendarLine(item task.Task, prefixLengths map[string]int, now time.Time) string {
	prefixLen := ui.PrefixLength(prefixLengths, item.ID)
	id := ui.HighlightID(ui.ShortID(item.ID, prefixLen, shortIDLength), prefixLen)
	line := fmt.Sprintf("  %s  %-6s  %-11s  %s", id, item.Priority, item.Status, item.Title)
	if item.Overdue(now) {
		line += "  " + ui.Alert("overdue")
	}
	return line
}
