/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kanak-sys/ToDo-App/config"
	"github.com/kanak-sys/ToDo-App/internal/client"
	"github.com/kanak-sys/ToDo-App/types"
	"github.com/spf13/cobra"
)

func newAPIClient() (*client.Client, error) {
	cfg := config.LoadConfig()

	path := cfg.Client.SessionFile
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
	}
	return client.New(cfg.Client.BaseURL, client.NewFileStore(path)), nil
}

// currentSession loads the stored session or tells the user to log in.
func currentSession(c *client.Client) (client.Session, error) {
	s, err := c.Session()
	if err != nil {
		return client.Session{}, loginRequired(err)
	}
	return s, nil
}

// loginRequired turns session errors into the "log in again" message.
func loginRequired(err error) error {
	if errors.Is(err, client.ErrNoSession) || errors.Is(err, client.ErrSessionExpired) {
		return fmt.Errorf("%w: run `todo login`", err)
	}
	return err
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid todo id %q", arg)
	}
	return id, nil
}

// findTodo fetches the list and picks id out of it.
func findTodo(cmd *cobra.Command, c *client.Client, s client.Session, id int) (types.Todo, error) {
	todos, err := c.ListTodos(cmd.Context(), s)
	if err != nil {
		return types.Todo{}, loginRequired(err)
	}
	for _, todo := range todos {
		if todo.ID == id {
			return todo, nil
		}
	}
	return types.Todo{}, fmt.Errorf("todo %d not found", id)
}
