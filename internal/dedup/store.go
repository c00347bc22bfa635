package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrLocked means another run currently owns the seen log.
var ErrLocked = errors.New("dedup: seen log is locked by another run")

// Store is the persisted seen set owned by one pipeline run.
type Store interface {
	HasSeen(fp string) bool
	Record(fp string)
	Flush() error
	// Close flushes and releases the backing resource. Safe to call twice.
	Close() error
	Len() int
}

// FileStore keeps the seen log as a JSON array of fingerprints, oldest first.
type FileStore struct {
	mu     sync.Mutex
	path   string
	set    *SeenSet
	lock   *flock.Flock
	dirty  bool
	closed bool
	log    *slog.Logger
}

// OpenFile takes an exclusive lock on path+".lock" and loads the log. The
// caller must defer Close so the log is flushed on every exit path.
func OpenFile(path string, capacity int, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("dedup: create dir: %w", err)
	}

	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("dedup: lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return &FileStore{
		path: path,
		set:  LoadFile(path, capacity, logger),
		lock: fl,
		log:  logger,
	}, nil
}

// LoadFile reads a persisted log. It fails open: a missing or corrupt file
// yields an empty set and a warning, never an error.
func LoadFile(path string, capacity int, logger *slog.Logger) *SeenSet {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("seen log unreadable, starting empty", "category", "state_corrupt", "path", path, "err", err)
		}
		return NewSeenSet(capacity)
	}

	var entries []string
	if err := json.Unmarshal(b, &entries); err != nil {
		logger.Warn("seen log corrupt, starting empty", "category", "state_corrupt", "path", path, "err", err)
		return NewSeenSet(capacity)
	}

	set := NewSeenSetFrom(capacity, entries)
	logger.Info("seen log loaded", "path", path, "entries", set.Len(), "dropped", len(entries)-set.Len())
	return set
}

func (s *FileStore) HasSeen(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Has(fp)
}

func (s *FileStore) Record(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.Has(fp) {
		return
	}
	s.set.Add(fp)
	s.dirty = true
}

func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	if !s.dirty {
		return nil
	}
	b, err := json.Marshal(s.set.Entries())
	if err != nil {
		return fmt.Errorf("dedup: marshal seen log: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("dedup: write seen log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("dedup: replace seen log: %w", err)
	}
	s.dirty = false
	s.log.Debug("seen log flushed", "path", s.path, "entries", s.set.Len())
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	ferr := s.flushLocked()
	uerr := s.lock.Unlock()
	return errors.Join(ferr, uerr)
}
