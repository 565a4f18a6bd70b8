package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fentz26/todo/internal/models"
)

const listTimeLayout = "Jan 2, 2006 03:04 PM"

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent open tasks",
	RunE:  runTaskList,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task, including completed ones",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task",
	RunE:  runTaskClear,
}

var (
	taskTitle   string
	taskDesc    string
	confirmWipe bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskDoneCmd, taskClearCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description (required)")
	taskAddCmd.MarkFlagRequired("title")

	taskClearCmd.Flags().BoolVar(&confirmWipe, "yes", false, "Confirm deleting all tasks")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	if err := models.ValidateNewTask(taskTitle, taskDesc); err != nil {
		return err
	}

	st, _ := newSyncStore()
	task, err := st.CreateTask(cmd.Context(), taskTitle, taskDesc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task: %s\n\n", task.ID)

	snap := st.Snapshot()
	if snap.Err != "" {
		log.Warn("could not refresh task list", "error", snap.Err)
		return nil
	}
	return printTasks(out, snap.Tasks)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	st, _ := newSyncStore()
	if err := st.Refresh(cmd.Context()); err != nil {
		return err
	}
	return printTasks(cmd.OutOrStdout(), st.Snapshot().Tasks)
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	st, _ := newSyncStore()
	if err := st.CompleteTask(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed task: %s\n", args[0])
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	_, c := newSyncStore()
	task, err := c.GetTask(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	status := "open"
	if task.Completed {
		status = "completed"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", task.ID)
	fmt.Fprintf(out, "Title:       %s\n", task.Title)
	fmt.Fprintf(out, "Description: %s\n", task.Description)
	fmt.Fprintf(out, "Status:      %s\n", status)
	fmt.Fprintf(out, "Created:     %s\n", task.CreatedAt.Local().Format(listTimeLayout))
	fmt.Fprintf(out, "Updated:     %s\n", task.UpdatedAt.Local().Format(listTimeLayout))
	return nil
}

func runTaskClear(cmd *cobra.Command, args []string) error {
	if !confirmWipe {
		return errors.New("refusing to delete all tasks without --yes")
	}

	_, c := newSyncStore()
	if err := c.ClearAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All tasks deleted")
	return nil
}

func printTasks(out io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet.")
		return nil
	}

	fmt.Fprintf(out, "Recent Tasks (%d/%d)\n", len(tasks), models.VisibleLimit)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Title, truncate(t.Description, 40), t.CreatedAt.Local().Format(listTimeLayout))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
