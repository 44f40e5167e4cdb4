package instagram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// MessageSource yields direct messages newer than the given timestamp,
// oldest first. The concrete source is Client.Inbox.
type MessageSource interface {
	Inbox(ctx context.Context, since time.Time) ([]DirectMessage, error)
}

// MessageHandler is invoked once per new direct message. Returning an error
// logs the failure but does not stop the poller; the watermark still
// advances so a poisoned message is not retried forever.
type MessageHandler func(ctx context.Context, msg DirectMessage) error

const defaultPollInterval = 30 * time.Second

// Poller periodically fetches the direct-message inbox and hands new
// messages to its handler. A file-backed watermark keeps restarts from
// replaying messages already seen.
type Poller struct {
	source    MessageSource
	handler   MessageHandler
	watermark *Watermark
	logger    *slog.Logger
	interval  time.Duration

	mu      sync.Mutex
	running bool
	since   time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(source MessageSource, handler MessageHandler, watermark *Watermark, logger *slog.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:    source,
		handler:   handler,
		watermark: watermark,
		logger:    logger.With(slog.String("component", "dm-poller")),
		interval:  interval,
	}
}

func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("instagram: poller already running")
	}

	since, err := p.watermark.Load()
	if err != nil {
		return err
	}
	p.since = since

	runCtx, cancel := context.WithCancel(ctx)
	p.ctx = runCtx
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.loop()
	return nil
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Poller) loop() {
	defer p.wg.Done()

	p.poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	ctx := p.ctx
	if ctx == nil {
		return
	}

	p.mu.Lock()
	since := p.since
	p.mu.Unlock()

	messages, err := p.source.Inbox(ctx, since)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			p.logger.Error("session expired; log in again", slog.Any("error", err))
			return
		}
		p.logger.Warn("inbox fetch failed; will retry", slog.Any("error", err))
		return
	}
	if len(messages) == 0 {
		return
	}

	newest := since
	for _, msg := range messages {
		if p.handler != nil {
			if herr := p.handler(ctx, msg); herr != nil {
				p.logger.Warn("message handler failed",
					slog.String("message_id", msg.ID),
					slog.Any("error", herr))
			}
		}
		if msg.Timestamp.After(newest) {
			newest = msg.Timestamp
		}
	}

	if newest.After(since) {
		if werr := p.watermark.Store(newest); werr != nil {
			p.logger.Warn("watermark persist failed", slog.Any("error", werr))
		}
		p.mu.Lock()
		p.since = newest
		p.mu.Unlock()
	}

	p.logger.Info("processed direct messages",
		slog.Int("count", len(messages)),
		slog.Time("watermark", newest))
}
