/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/kanak-sys/ToDo-App/config"
	"github.com/kanak-sys/ToDo-App/internal/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "Multi-user todo backend and command line client",
	Long: `todo runs the todo REST API and talks to it.

	todo server            start the HTTP API
	todo migrate up        apply database migrations
	todo login             authenticate and store the session
	todo list              show your todos
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(cfg.LogLevel, os.Stderr)
}
