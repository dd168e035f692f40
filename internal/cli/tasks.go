package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "List and change tasks",
}

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, filtered and sorted",
	Args:    cobra.NoArgs,
	RunE:    runTasksList,
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show one task with its sub-tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksShow,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTasksAdd,
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move <task> <todo|doing|done>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasksMove,
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Change some fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksEdit,
}

var tasksDeleteCmd = &cobra.Command{
	Use:     "delete <task>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTasksDelete,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	tasksCmd.AddCommand(tasksEditCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)

	tasksListCmd.Flags().StringP("search", "s", "", "Match title, description or tags")
	tasksListCmd.Flags().String("sort", "dueDate", "Sort by dueDate, createdAt or title")
	tasksListCmd.Flags().String("order", "asc", "Sort order: asc or desc")
	tasksListCmd.Flags().String("status", "", "Only show one column: todo, doing or done")

	tasksAddCmd.Flags().StringP("desc", "d", "", "Description")
	tasksAddCmd.Flags().String("status", "todo", "Column: todo, doing or done")
	tasksAddCmd.Flags().StringP("priority", "p", "medium", "Priority: low, medium or high")
	tasksAddCmd.Flags().String("tags", "", "Comma separated labels")
	tasksAddCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	tasksAddCmd.Flags().StringP("assignee", "a", "", "Assignee name")
	_ = tasksAddCmd.MarkFlagRequired("due")

	tasksEditCmd.Flags().String("title", "", "New title")
	tasksEditCmd.Flags().StringP("desc", "d", "", "New description")
	tasksEditCmd.Flags().StringP("priority", "p", "", "New priority")
	tasksEditCmd.Flags().String("tags", "", "Replace labels (comma separated)")
	tasksEditCmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	tasksEditCmd.Flags().StringP("assignee", "a", "", "Assign to a person by name")
	tasksEditCmd.Flags().Bool("unassign", false, "Remove the assignee")
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return domain.NormalizeTags(strings.Split(raw, ","))
}

func runTasksList(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	sortRaw, _ := cmd.Flags().GetString("sort")
	orderRaw, _ := cmd.Flags().GetString("order")
	statusRaw, _ := cmd.Flags().GetString("status")

	sortBy, err := domain.ParseSortField(sortRaw)
	if err != nil {
		return err
	}
	order, err := domain.ParseSortOrder(orderRaw)
	if err != nil {
		return err
	}
	var status domain.Status
	if statusRaw != "" {
		if status, err = domain.ParseStatus(statusRaw); err != nil {
			return err
		}
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := domain.Query{Search: search, SortBy: sortBy, Order: order}.Apply(a.coll.Tasks())
	if status != "" {
		tasks = domain.ByStatus(tasks)[status]
	}
	return renderTasks(cmd.OutOrStdout(), tasks)
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	return renderTask(cmd.OutOrStdout(), t)
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	desc, _ := cmd.Flags().GetString("desc")
	statusRaw, _ := cmd.Flags().GetString("status")
	priorityRaw, _ := cmd.Flags().GetString("priority")
	tagsRaw, _ := cmd.Flags().GetString("tags")
	dueRaw, _ := cmd.Flags().GetString("due")
	assignee, _ := cmd.Flags().GetString("assignee")

	status, err := domain.ParseStatus(statusRaw)
	if err != nil {
		return err
	}
	priority, err := domain.ParsePriority(priorityRaw)
	if err != nil {
		return err
	}
	due, err := domain.ParseDate(dueRaw)
	if err != nil {
		return err
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAdmin(); err != nil {
		return err
	}

	created, err := a.coll.AddTask(cmd.Context(), domain.TaskInput{
		Title:       strings.Join(args, " "),
		Description: desc,
		Status:      status,
		Priority:    priority,
		Tags:        splitTags(tagsRaw),
		DueDate:     due,
		Assignee:    domain.NewStaffMember(assignee),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", shortID(created.ID))
	return renderTask(cmd.OutOrStdout(), *created)
}

func runTasksMove(cmd *cobra.Command, args []string) error {
	status, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAdmin(); err != nil {
		return err
	}

	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.coll.UpdateTaskStatus(cmd.Context(), t.ID, status); err != nil {
		return err
	}
	if err := a.settle(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", shortID(t.ID), status.Label())
	return nil
}

func runTasksEdit(cmd *cobra.Command, args []string) error {
	patch, err := editPatch(cmd)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return domain.Invalid("nothing to change")
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAdmin(); err != nil {
		return err
	}

	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.coll.UpdateTask(cmd.Context(), t.ID, patch); err != nil {
		return err
	}
	if err := a.settle(); err != nil {
		return err
	}

	updated, ok := a.coll.Task(t.ID)
	if !ok {
		updated = patch.Apply(t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(t.ID))
	return renderTask(cmd.OutOrStdout(), updated)
}

// editPatch builds a patch from the flags that were given explicitly.
func editPatch(cmd *cobra.Command) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		patch.Title = &v
	}
	if flags.Changed("desc") {
		v, _ := flags.GetString("desc")
		patch.Description = &v
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		p, err := domain.ParsePriority(raw)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if flags.Changed("tags") {
		raw, _ := flags.GetString("tags")
		tags := splitTags(raw)
		patch.Tags = &tags
	}
	if flags.Changed("due") {
		raw, _ := flags.GetString("due")
		due, err := domain.ParseDate(raw)
		if err != nil {
			return patch, err
		}
		patch.DueDate = &due
	}
	if flags.Changed("assignee") {
		name, _ := flags.GetString("assignee")
		if member := domain.NewStaffMember(name); member != nil {
			patch.Assignee = member
		} else {
			patch.ClearAssignee = true
		}
	}
	if unassign, _ := flags.GetBool("unassign"); unassign {
		patch.ClearAssignee = true
	}
	return patch, patch.Validate()
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAdmin(); err != nil {
		return err
	}

	t, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.coll.DeleteTask(cmd.Context(), t.ID); err != nil {
		return err
	}
	if err := a.settle(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(t.ID))
	return nil
}
