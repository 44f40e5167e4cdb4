package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/splitroom-app/backend/internal/upload"
)

// ErrNoVideos is returned by PostNext when the uploads directory holds no
// candidate .mp4 files.
var ErrNoVideos = errors.New("instagram: no videos in uploads directory")

const (
	publishRetries = 2
	publishBackoff = 5 * time.Second
)

// VideoPublisher is the slice of the API client the poster needs.
type VideoPublisher interface {
	PublishVideo(ctx context.Context, params PublishVideoParams) (*PublishResult, error)
}

// Poster publishes the oldest queued video from the uploads directory.
type Poster struct {
	publisher VideoPublisher
	store     *upload.Store
	coverPath string
	caption   string
}

// NewPoster constructs a Poster. coverPath may be empty, in which case the
// post goes out without a cover frame.
func NewPoster(publisher VideoPublisher, store *upload.Store, coverPath, caption string) *Poster {
	return &Poster{publisher: publisher, store: store, coverPath: coverPath, caption: caption}
}

// PostNext publishes the first queued video and deletes it on success.
// Publishing is retried a bounded number of times with a fixed pause;
// exhausted retries fail this video only; it stays queued for the next
// scheduled run.
func (p *Poster) PostNext(ctx context.Context) (*PublishResult, error) {
	videos, err := p.store.ListVideos()
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	videoPath := videos[0]

	video, err := os.ReadFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("instagram: read video %s: %w", videoPath, err)
	}

	var cover []byte
	if p.coverPath != "" {
		cover, err = os.ReadFile(p.coverPath)
		if err != nil {
			return nil, fmt.Errorf("instagram: read cover %s: %w", p.coverPath, err)
		}
	}

	slog.Info("publishing video", "video", videoPath, "cover", p.coverPath)

	var result *PublishResult
	backoff := retry.WithMaxRetries(publishRetries, retry.NewConstant(publishBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var perr error
		result, perr = p.publisher.PublishVideo(ctx, PublishVideoParams{
			Video:   video,
			Cover:   cover,
			Caption: p.caption,
		})
		if perr != nil {
			// Expired sessions will not heal by retrying.
			if errors.Is(perr, ErrSessionExpired) {
				return perr
			}
			slog.Warn("publish attempt failed", "error", perr)
			return retry.RetryableError(perr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := p.store.Remove(videoPath); err != nil {
		return nil, err
	}
	slog.Info("video published", "media_id", result.MediaID)
	return result, nil
}
