package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/instagram"
)

func newBrowseCommand() *cobra.Command {
	var headful bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Log in through a browser and open the reels feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadAutomation()
			if cfg.Username == "" || cfg.Password == "" {
				return errors.New("INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD must be set")
			}

			browser, err := instagram.NewChromeBrowser(cmd.Context(), headful)
			if err != nil {
				return err
			}
			defer browser.Close()

			flow := &instagram.ReelsFlow{Username: cfg.Username, Password: cfg.Password}
			if err := flow.Run(cmd.Context(), browser); err != nil {
				return err
			}

			logger().Info("reels feed opened")
			return nil
		},
	}

	cmd.Flags().BoolVar(&headful, "headful", false, "Run the browser with a visible window")
	return cmd
}
