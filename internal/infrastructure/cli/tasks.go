package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/pkg/application"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the task list",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		rows := app.List.Load(cmd.Context())
		return printList(cmd.OutOrStdout(), rows, app.List.Amount(), listJSON)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Append a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		row, err := app.List.Add(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return MapError(fmt.Errorf("failed to add task: %w", err))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", todo.PlainText(row.Text))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <task> <text...>",
	Short: "Change the text of a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()
		row, err := resolveTask(app.List.Load(ctx), args[0])
		if err != nil {
			return MapError(err)
		}
		edited, err := app.List.Edit(ctx, row.Key, strings.Join(args[1:], " "))
		if err != nil {
			return MapError(fmt.Errorf("failed to edit task: %w", err))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Edited: %s\n", todo.PlainText(edited.Text))
		return nil
	},
}

// completionCommand builds the done/undo commands.
func completionCommand(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx := cmd.Context()
			row, err := resolveTask(app.List.Load(ctx), args[0])
			if err != nil {
				return MapError(err)
			}
			if _, err := app.List.SetCompleted(ctx, row.Key, completed); err != nil {
				return MapError(fmt.Errorf("failed to update task: %w", err))
			}
			mark := "open"
			if completed {
				mark = "done"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Marked %s: %s\n", mark, todo.PlainText(row.Text))
			return nil
		},
	}
}

var removeCmd = &cobra.Command{
	Use:     "rm <task>",
	Aliases: []string{"remove"},
	Short:   "Remove a task; removed template tasks stay removed on reload",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()
		row, err := resolveTask(app.List.Load(ctx), args[0])
		if err != nil {
			return MapError(err)
		}
		task, err := app.List.Remove(ctx, row.Key)
		if err != nil {
			return MapError(fmt.Errorf("failed to remove task: %w", err))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", task.Key())
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <task> <position>",
	Short: "Move a task to a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[1])
		if err != nil || to < 1 {
			return MapError(fmt.Errorf("%w: position %q", application.ErrInvalidOrder, args[1]))
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()
		rows := app.List.Load(ctx)
		row, err := resolveTask(rows, args[0])
		if err != nil {
			return MapError(err)
		}
		from := indexOf(rows, row.Key)
		if err := app.List.Move(ctx, from, to-1); err != nil {
			return MapError(fmt.Errorf("failed to move task: %w", err))
		}
		return printList(cmd.OutOrStdout(), app.List.Snapshot(), app.List.Amount(), false)
	},
}

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task and forget removals; the amount is kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return NewCLIError("refusing to delete all tasks", "Re-run with --yes to confirm", nil)
		}
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := app.List.DeleteAll(cmd.Context()); err != nil {
			return MapError(fmt.Errorf("failed to clear tasks: %w", err))
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All tasks deleted.")
		return nil
	},
}

// resolveTask finds a row by 1-based position, key, or exact plain text.
func resolveTask(rows []todo.Row, ref string) (todo.Row, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(rows) {
		return rows[n-1], nil
	}
	for _, r := range rows {
		if r.Key == ref {
			return r, nil
		}
	}
	for _, r := range rows {
		if todo.PlainText(r.Text) == ref {
			return r, nil
		}
	}
	return todo.Row{}, fmt.Errorf("%w: %s", application.ErrTaskNotFound, ref)
}

func indexOf(rows []todo.Row, key string) int {
	for i, r := range rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

type listedTask struct {
	Position  int    `json:"position"`
	Key       string `json:"key"`
	Text      string `json:"text"`
	Plain     string `json:"plain"`
	Completed bool   `json:"completed"`
}

type listOutput struct {
	Tasks  []listedTask `json:"tasks"`
	Amount int          `json:"amount"`
}

func printList(w io.Writer, rows []todo.Row, amount int, jsonOut bool) error {
	if jsonOut {
		out := listOutput{Tasks: make([]listedTask, 0, len(rows)), Amount: amount}
		for i, r := range rows {
			out.Tasks = append(out.Tasks, listedTask{
				Position:  i + 1,
				Key:       r.Key,
				Text:      r.Text,
				Plain:     todo.PlainText(r.Text),
				Completed: r.Completed,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, string(data))
		return nil
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks.")
	}
	for i, r := range rows {
		mark := " "
		if r.Completed {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "%3d. [%s] %s\n", i+1, mark, todo.PlainText(r.Text))
	}
	_, _ = fmt.Fprintf(w, "Premium amount: %d\n", amount)
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	clearCmd.Flags().BoolVarP(&clearForce, "yes", "y", false, "Confirm deleting all tasks")

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(editCmd)
	RootCmd.AddCommand(completionCommand("done", "Mark a task as completed", true))
	RootCmd.AddCommand(completionCommand("undo", "Mark a task as not completed", false))
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(moveCmd)
	RootCmd.AddCommand(clearCmd)
}
