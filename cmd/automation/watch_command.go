package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/instagram"
)

func newWatchCommand() *cobra.Command {
	var interval time.Duration
	var watermarkFile string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the direct-message inbox and log new messages",
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

			handler := func(ctx context.Context, msg instagram.DirectMessage) error {
				logger().Info("direct message",
					slog.String("thread_id", msg.ThreadID),
					slog.String("sender", msg.Sender),
					slog.String("text", msg.Text),
					slog.Time("sent_at", msg.Timestamp))
				return nil
			}

			poller := instagram.NewPoller(
				session.Client(),
				handler,
				instagram.NewWatermark(watermarkFile),
				logger(),
				interval,
			)
			if err := poller.Start(cmd.Context()); err != nil {
				return err
			}
			defer poller.Stop()

			logger().Info("watching inbox", slog.Duration("interval", interval))

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "How often to poll the inbox")
	cmd.Flags().StringVar(&watermarkFile, "watermark", "dm_watermark", "File tracking the newest message already seen")
	return cmd
}
