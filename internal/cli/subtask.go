package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
)

var subtaskCmd = &cobra.Command{
	Use:     "subtask",
	Aliases: []string{"sub"},
	Short:   "Edit a task's checklist",
	Long: `Edit a task's checklist.

Sub-tasks are addressed by their position (1, 2, ...) or by an id prefix.`,
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task> <title>",
	Short: "Append a sub-task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args[1:], " ")
		return editSubTasks(cmd, args[0], func(list []domain.SubTask) ([]domain.SubTask, error) {
			return domain.AddSubTask(list, title)
		})
	},
}

var subtaskRemoveCmd = &cobra.Command{
	Use:     "remove <task> <subtask>",
	Aliases: []string{"rm"},
	Short:   "Remove a sub-task",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSubTasks(cmd, args[0], func(list []domain.SubTask) ([]domain.SubTask, error) {
			i, err := findSubTask(list, args[1])
			if err != nil {
				return nil, err
			}
			return domain.RemoveSubTask(list, list[i].ID), nil
		})
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task> <subtask>",
	Short: "Check or uncheck a sub-task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSubTasks(cmd, args[0], func(list []domain.SubTask) ([]domain.SubTask, error) {
			i, err := findSubTask(list, args[1])
			if err != nil {
				return nil, err
			}
			out, _ := domain.ToggleSubTask(list, list[i].ID)
			return out, nil
		})
	},
}

var subtaskUpCmd = &cobra.Command{
	Use:   "up <task> <subtask>",
	Short: "Move a sub-task one place up",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSubTasks(cmd, args[0], func(list []domain.SubTask) ([]domain.SubTask, error) {
			i, err := findSubTask(list, args[1])
			if err != nil {
				return nil, err
			}
			return domain.MoveSubTaskUp(list, i), nil
		})
	},
}

var subtaskDownCmd = &cobra.Command{
	Use:   "down <task> <subtask>",
	Short: "Move a sub-task one place down",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSubTasks(cmd, args[0], func(list []domain.SubTask) ([]domain.SubTask, error) {
			i, err := findSubTask(list, args[1])
			if err != nil {
				return nil, err
			}
			return domain.MoveSubTaskDown(list, i), nil
		})
	},
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskRemoveCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	subtaskCmd.AddCommand(subtaskUpCmd)
	subtaskCmd.AddCommand(subtaskDownCmd)
}

// findSubTask accepts a 1-based position or an id prefix.
func findSubTask(list []domain.SubTask, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return -1, domain.Invalid("no sub-task at position %d", n)
		}
		return n - 1, nil
	}
	if i := domain.IndexOfSubTask(list, ref); i >= 0 {
		return i, nil
	}
	found := -1
	for i, st := range list {
		if strings.HasPrefix(st.ID, ref) {
			if found >= 0 {
				return -1, domain.Invalid("sub-task %q is ambiguous", ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, domain.Invalid("no sub-task %q", ref)
	}
	return found, nil
}

// editSubTasks replaces the task's checklist with the result of fn.
func editSubTasks(cmd *cobra.Command, ref string, fn func([]domain.SubTask) ([]domain.SubTask, error)) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAdmin(); err != nil {
		return err
	}

	t, err := a.resolve(ref)
	if err != nil {
		return err
	}
	list, err := fn(t.SubTasks)
	if err != nil {
		return err
	}
	if err := a.coll.UpdateTask(cmd.Context(), t.ID, domain.TaskPatch{SubTasks: &list}); err != nil {
		return err
	}
	if err := a.settle(); err != nil {
		return err
	}

	updated, ok := a.coll.Task(t.ID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", shortID(t.ID), t.Title)
	for i, st := range updated.SubTasks {
		mark := " "
		if st.Completed {
			mark = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. [%s] %s\n", i+1, mark, st.Title)
	}
	return nil
}
