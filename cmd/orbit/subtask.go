package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/orbit/internal/ids"
	"github.com/amonks/orbit/task"
	"github.com/spf13/cobra"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a task's checklist",
	Long: `Manage a task's checklist.

Subtasks are referenced by 1-based position or by ID prefix.`,
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task> <title>...",
	Short: "Append subtasks to a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSubtaskAdd,
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task> <subtask>",
	Short: "Flip a subtask between done and not done",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubtaskToggle,
}

var subtaskRemoveCmd = &cobra.Command{
	Use:   "remove <task> <subtask>",
	Short: "Remove a subtask",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubtaskRemove,
}

var subtaskMoveCmd = &cobra.Command{
	Use:   "move <task> <subtask> <position>",
	Short: "Move a subtask to a 1-based position",
	Args:  cobra.ExactArgs(3),
	RunE:  runSubtaskMove,
}

var subtaskRenameCmd = &cobra.Command{
	Use:   "rename <task> <subtask> <title>",
	Short: "Rename a subtask",
	Args:  cobra.ExactArgs(3),
	RunE:  runSubtaskRename,
}

func init() {
	rootCmd.AddCommand(subtaskCmd)
	subtaskCmd.AddCommand(subtaskAddCmd, subtaskToggleCmd, subtaskRemoveCmd, subtaskMoveCmd, subtaskRenameCmd)
}

func runSubtaskAdd(cmd *cobra.Command, args []string) error {
	return editSubtasks(args[0], func(subtasks []task.Subtask) ([]task.Subtask, error) {
		next := task.AppendSubtasks(subtasks, args[1:], ids.New)
		if len(next) == len(subtasks) {
			return nil, task.ErrEmptySubtaskTitle
		}
		return next, nil
	})
}

func runSubtaskToggle(cmd *cobra.Command, args []string) error {
	return editSubtasks(args[0], func(subtasks []task.Subtask) ([]task.Subtask, error) {
		index, err := task.ResolveSubtask(subtasks, args[1])
		if err != nil {
			return nil, err
		}
		return task.ToggleSubtask(subtasks, index)
	})
}

func runSubtaskRemove(cmd *cobra.Command, args []string) error {
	return editSubtasks(args[0], func(subtasks []task.Subtask) ([]task.Subtask, error) {
		index, err := task.ResolveSubtask(subtasks, args[1])
		if err != nil {
			return nil, err
		}
		return task.RemoveSubtask(subtasks, index)
	})
}

func runSubtaskMove(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(strings.TrimSpace(args[2]))
	if err != nil {
		return fmt.Errorf("position must be a number: %q", args[2])
	}
	return editSubtasks(args[0], func(subtasks []task.Subtask) ([]task.Subtask, error) {
		index, err := task.ResolveSubtask(subtasks, args[1])
		if err != nil {
			return nil, err
		}
		return task.MoveSubtask(subtasks, index, position)
	})
}

func runSubtaskRename(cmd *cobra.Command, args []string) error {
	return editSubtasks(args[0], func(subtasks []task.Subtask) ([]task.Subtask, error) {
		index, err := task.ResolveSubtask(subtasks, args[1])
		if err != nil {
			return nil, err
		}
		return task.RenameSubtask(subtasks, index, args[2])
	})
}

// editSubtasks replaces a task's checklist with the result of edit and
// prints the new checklist.
func editSubtasks(ref string, edit func([]task.Subtask) ([]task.Subtask, error)) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	existing, err := sess.resolve(ref)
	if err != nil {
		return err
	}
	next, err := edit(existing.Subtasks)
	if err != nil {
		return err
	}
	updated, err := sess.store.Update(existing.ID, task.UpdateOptions{Subtasks: &next})
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, ref)
	}

	completed, total := updated.SubtaskProgress()
	fmt.Printf("Subtasks of %s: %s (%d/%d)\n", sess.highlighter()(updated.ID), updated.Title, completed, total)
	printSubtaskList(updated.Subtasks)
	return nil
}
