// The automation command runs the Instagram side jobs: keeping a logged-in
// session alive, posting queued videos, watching direct messages, and firing
// posts on the daily schedule.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/config"
	"github.com/splitroom-app/backend/internal/logging"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "automation",
		Short:         "Instagram automation jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupConsole(logging.ParseLevel(logLevel))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")

	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newPostCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newScheduleCommand())

	return rootCmd
}

func logger() *slog.Logger { return slog.Default() }

func loadAutomation() config.Automation {
	return config.LoadAutomation()
}
