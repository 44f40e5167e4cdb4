package instagram_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/instagram"
)

func TestWatermark_LoadMissingIsZeroTime(t *testing.T) {
	w := instagram.NewWatermark(filepath.Join(t.TempDir(), "watermark"))

	ts, err := w.Load()

	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestWatermark_StoreLoadRoundTrip(t *testing.T) {
	w := instagram.NewWatermark(filepath.Join(t.TempDir(), "watermark"))
	in := time.Date(2026, 8, 29, 9, 30, 0, 123456789, time.UTC)

	require.NoError(t, w.Store(in))
	got, err := w.Load()

	require.NoError(t, err)
	assert.True(t, got.Equal(in), "got %v want %v", got, in)
}

func TestWatermark_StoreOverwrites(t *testing.T) {
	w := instagram.NewWatermark(filepath.Join(t.TempDir(), "watermark"))
	first := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, w.Store(first))
	require.NoError(t, w.Store(second))

	got, err := w.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(second))
}

func TestWatermark_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watermark")
	require.NoError(t, os.WriteFile(path, []byte("not a timestamp"), 0o644))

	_, err := instagram.NewWatermark(path).Load()

	require.Error(t, err)
}

func TestWatermark_StoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := instagram.NewWatermark(filepath.Join(dir, "watermark"))

	require.NoError(t, w.Store(time.Now()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "watermark", entries[0].Name())
}
