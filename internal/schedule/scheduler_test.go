package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/schedule"
)

func noopJob(ctx context.Context) error { return nil }

func TestNew_NilJob(t *testing.T) {
	_, err := schedule.New(nil, "", nil, nil)

	require.Error(t, err)
}

func TestNew_BadTimezone(t *testing.T) {
	_, err := schedule.New(noopJob, "Mars/Olympus_Mons", nil, nil)

	require.Error(t, err)
}

func TestScheduler_DefaultSlots(t *testing.T) {
	s, err := schedule.New(noopJob, "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.Entries()
	require.Len(t, next, 4, "four posting slots per day")
	now := time.Now()
	for _, ts := range next {
		assert.True(t, ts.After(now), "every slot's next firing is in the future")
	}
}

func TestScheduler_CustomSlots(t *testing.T) {
	s, err := schedule.New(noopJob, "UTC", []string{"30 6 * * *"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.Entries()
	require.Len(t, next, 1)
	assert.Equal(t, 6, next[0].UTC().Hour())
	assert.Equal(t, 30, next[0].UTC().Minute())
}

func TestScheduler_BadSlotExpression(t *testing.T) {
	s, err := schedule.New(noopJob, "UTC", []string{"not a cron line"}, nil)
	require.NoError(t, err)

	err = s.Start(context.Background())

	require.Error(t, err)
}

func TestScheduler_SlotsInConfiguredTimezone(t *testing.T) {
	s, err := schedule.New(noopJob, schedule.DefaultTimezone, []string{"0 9 * * *"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	loc, err := time.LoadLocation(schedule.DefaultTimezone)
	require.NoError(t, err)

	next := s.Entries()
	require.Len(t, next, 1)
	assert.Equal(t, 9, next[0].In(loc).Hour(), "slot hours are local to the configured zone")
}
