/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kanak-sys/ToDo-App/types"
	"github.com/spf13/cobra"
)

var (
	addDescription  string
	editTitle       string
	editDescription string
	editCompleted   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your todos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		todos, err := c.ListTodos(cmd.Context(), s)
		if err != nil {
			return loginRequired(err)
		}
		printTodos(cmd, todos)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		todo, err := c.CreateTodo(cmd.Context(), s, strings.Join(args, " "), addDescription)
		if err != nil {
			return loginRequired(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created todo %d\n", todo.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title, description or completion of a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		// Updates replace every field, so start from what the server has.
		todo, err := findTodo(cmd, c, s, id)
		if err != nil {
			return err
		}
		fields := types.TodoFields{Title: todo.Title, Description: todo.Description, Completed: todo.Completed}
		if cmd.Flags().Changed("title") {
			fields.Title = editTitle
		}
		if cmd.Flags().Changed("description") {
			fields.Description = editDescription
		}
		if cmd.Flags().Changed("completed") {
			fields.Completed = editCompleted
		}

		updated, err := c.UpdateTodo(cmd.Context(), s, id, fields)
		if err != nil {
			return loginRequired(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated todo %d\n", updated.ID)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a todo between open and completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		todo, err := findTodo(cmd, c, s, id)
		if err != nil {
			return err
		}
		updated, err := c.ToggleTodo(cmd.Context(), s, todo)
		if err != nil {
			return loginRequired(err)
		}
		state := "open"
		if updated.Completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Todo %d is %s\n", updated.ID, state)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		msg, err := c.DeleteTodo(cmd.Context(), s, id)
		if err != nil {
			return loginRequired(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func printTodos(cmd *cobra.Command, todos []types.Todo) {
	out := cmd.OutOrStdout()
	if len(todos) == 0 {
		fmt.Fprintln(out, "No todos yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tDESCRIPTION")
	for _, todo := range todos {
		mark := "[ ]"
		if todo.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", todo.ID, mark, todo.Title, todo.Description)
	}
	tw.Flush()
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "todo description")
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "new description")
	editCmd.Flags().BoolVar(&editCompleted, "completed", false, "completion state")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, doneCmd, rmCmd)
}
