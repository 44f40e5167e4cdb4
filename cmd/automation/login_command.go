package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/instagram"
)

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to Instagram and persist the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadAutomation()
			if cfg.Username == "" || cfg.Password == "" {
				return errors.New("INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD must be set")
			}

			session, err := instagram.Open(cmd.Context(), instagram.SessionConfig{
				Username:  cfg.Username,
				Password:  cfg.Password,
				StatePath: cfg.StateFile,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			logger().Info("logged in",
				slog.String("username", session.Account().Username),
				slog.String("state_file", cfg.StateFile))
			return nil
		},
	}
}
