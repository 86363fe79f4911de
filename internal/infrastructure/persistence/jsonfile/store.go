// Package jsonfile persists the whole school state as a single JSON
// document on disk. Every operation reads the full document and rewrites
// it in full; Exclusive serializes those cycles under one mutex.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/escola-hub/escola-server/internal/domain/school"
)

// Store owns the data file and the global mutation lock.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a store backed by the file at path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads and decodes the data file. A missing or corrupt file yields a
// fresh empty state so the service keeps running; the condition is logged,
// never fatal.
func (s *Store) Load() (*school.State, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return school.NewState(), nil
		}
		s.logger.Warn("data file unreadable, starting from empty state",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return school.NewState(), nil
	}
	state := school.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		s.logger.Warn("data file corrupt, starting from empty state",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return school.NewState(), nil
	}
	state.Normalize()
	return state, nil
}

// Save rewrites the whole data file. The document is written to a temp
// file in the same directory and renamed over the target, so readers never
// observe a half-written file.
func (s *Store) Save(state *school.State) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Exclusive runs fn while holding the store lock. Every operation that
// touches the state, readers included, goes through here: the full
// load-mutate-save cycle of one request is atomic with respect to all
// other requests.
func (s *Store) Exclusive(fn func() (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
