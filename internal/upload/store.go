// Package upload manages the transient uploads directory: receipt photos
// kept briefly after extraction and videos waiting to be posted.
package upload

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store writes and lists files in a single uploads directory.
type Store struct {
	dir string
}

// NewStore ensures dir exists and returns a Store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store operates on.
func (s *Store) Dir() string { return s.dir }

// Save streams r into a new file named after the form field plus a unique
// timestamp/random suffix, preserving the original extension. Returns the
// full path of the written file.
func (s *Store) Save(field, originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s-%d-%d%s",
		sanitizeField(field),
		time.Now().UnixMilli(),
		rand.Int63n(1_000_000_000),
		strings.ToLower(filepath.Ext(originalName)),
	)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("upload: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("upload: write %s: %w", path, err)
	}
	return path, nil
}

// ListVideos returns the full paths of all .mp4 files in the directory,
// sorted by name so the oldest upload (timestamped names) is first.
func (s *Store) ListVideos() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("upload: read dir %s: %w", s.dir, err)
	}
	var videos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".mp4") {
			videos = append(videos, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(videos)
	return videos, nil
}

// Remove deletes a previously saved file. Removing a file that is already
// gone is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("upload: remove %s: %w", path, err)
	}
	return nil
}

// sanitizeField keeps only characters safe for a filename prefix.
func sanitizeField(field string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, field)
	if out == "" {
		return "upload"
	}
	return out
}
