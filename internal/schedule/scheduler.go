// Package schedule runs the recurring video-posting jobs on a fixed
// local-time calendar.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimezone anchors the posting slots; subscribers of the account
// are concentrated in this zone.
const DefaultTimezone = "Asia/Kolkata"

// DefaultSlots are the daily posting times: morning, after lunch, evening
// commute, and late night.
var DefaultSlots = []string{
	"0 9 * * *",
	"0 14 * * *",
	"0 17 * * *",
	"0 22 * * *",
}

// Job is the unit of scheduled work, typically Poster.PostNext wrapped in
// a closure.
type Job func(ctx context.Context) error

// Scheduler fires a Job at each configured cron slot.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	slots  []string
	job    Job
}

// New builds a scheduler in the given timezone; an empty tz falls back to
// DefaultTimezone and nil slots fall back to DefaultSlots.
func New(job Job, tz string, slots []string, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("schedule: job is required")
	}
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("schedule: load timezone %q: %w", tz, err)
	}
	if len(slots) == 0 {
		slots = DefaultSlots
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger.With(slog.String("component", "scheduler")),
		slots:  slots,
		job:    job,
	}, nil
}

// Start registers every slot and begins firing. It returns once the cron
// runner is going; Stop blocks until in-flight jobs finish.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, slot := range s.slots {
		slot := slot
		_, err := s.cron.AddFunc(slot, func() { s.fire(ctx, slot) })
		if err != nil {
			return fmt.Errorf("schedule: register slot %q: %w", slot, err)
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("slots", len(s.slots)))
	return nil
}

// Stop halts slot firing and waits for a running job to complete.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// Entries reports the next firing time of each registered slot, for status
// output.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Next)
	}
	return next
}

func (s *Scheduler) fire(ctx context.Context, slot string) {
	logger := s.logger.With(slog.String("slot", slot))
	logger.Info("posting slot fired")
	if err := s.job(ctx); err != nil {
		logger.Error("scheduled post failed", slog.Any("error", err))
		return
	}
	logger.Info("scheduled post completed")
}
