package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/splitroom-app/backend/internal/instagram"
	"github.com/splitroom-app/backend/internal/upload"
)

func newPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Post the next queued video from the uploads directory",
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
			result, err := poster.PostNext(cmd.Context())
			if err != nil {
				if errors.Is(err, instagram.ErrNoVideos) {
					logger().Info("no videos queued; nothing to post")
					return nil
				}
				return err
			}

			logger().Info("video posted", slog.String("media_id", result.MediaID))
			return nil
		},
	}
}
