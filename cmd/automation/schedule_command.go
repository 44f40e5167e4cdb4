package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/instagram"
	"github.com/splitroom-app/backend/internal/schedule"
	"github.com/splitroom-app/backend/internal/upload"
)

func newScheduleCommand() *cobra.Command {
	var timezone string
	var slots []string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily posting schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadAutomation()
			if cfg.PostUsername == "" || cfg.PostPassword == "" {
				return errors.New("INSTAGRAM_POST_USERNAME and INSTAGRAM_POST_PASSWORD must be set")
			}

			session, err := instagram.Open(cmd.Context(), instagram.SessionConfig{
				Username:  cfg.PostUsername,
				Password:  cfg.PostPassword,
				StatePath: cfg.StateFile,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			store, err := upload.NewStore(cfg.UploadDir)
			if err != nil {
				return err
			}
			poster := instagram.NewPoster(session.Client(), store, cfg.CoverImage, cfg.Caption)

			job := func(ctx context.Context) error {
				result, err := poster.PostNext(ctx)
				if err != nil {
					if errors.Is(err, instagram.ErrNoVideos) {
						logger().Info("no videos queued for this slot")
						return nil
					}
					return err
				}
				logger().Info("video posted", slog.String("media_id", result.MediaID))
				return nil
			}

			scheduler, err := schedule.New(job, timezone, slots, logger())
			if err != nil {
				return err
			}
			if err := scheduler.Start(cmd.Context()); err != nil {
				return err
			}
			defer scheduler.Stop()

			for _, next := range scheduler.Entries() {
				logger().Info("next post", slog.Time("at", next))
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", schedule.DefaultTimezone, "IANA timezone for the posting slots")
	cmd.Flags().StringSliceVar(&slots, "slot", nil, "Cron expression for a posting slot (repeatable; default slots if unset)")
	return cmd
}
