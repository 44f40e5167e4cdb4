package instagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Watermark persists the timestamp of the newest direct message already
// handled, so a restarted poller does not replay old messages.
type Watermark struct {
	path string
}

func NewWatermark(path string) *Watermark {
	return &Watermark{path: path}
}

// Load returns the stored timestamp, or the zero time when no watermark has
// been written yet.
func (w *Watermark) Load() (time.Time, error) {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("instagram: read watermark: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, fmt.Errorf("instagram: parse watermark: %w", err)
	}
	return ts, nil
}

// Store writes the timestamp atomically: a rename over the old file means a
// crash mid-write never leaves a truncated watermark behind.
func (w *Watermark) Store(ts time.Time) error {
	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".watermark-*")
	if err != nil {
		return fmt.Errorf("instagram: store watermark: %w", err)
	}
	name := tmp.Name()
	_, werr := tmp.WriteString(ts.Format(time.RFC3339Nano) + "\n")
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(name)
		if werr != nil {
			return fmt.Errorf("instagram: store watermark: %w", werr)
		}
		return fmt.Errorf("instagram: store watermark: %w", cerr)
	}
	if err := os.Rename(name, w.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("instagram: store watermark: %w", err)
	}
	return nil
}
