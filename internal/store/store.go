// Package store persists named JSON collections to flat files.
//
// Each collection lives in <dir>/<name>.json as a pretty-printed JSON
// array. Writes go through a temp file and an atomic rename, optionally
// keeping a .backup copy of the prior version. A per-file advisory lock
// guards against a second process pointed at the same data directory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockRetryDelay = 50 * time.Millisecond

type Store struct {
	dir     string
	backups bool
	log     *zap.Logger

	mu    sync.Mutex
	locks map[string]*flock.Flock
}

func New(dir string, backups bool, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dir:     dir,
		backups: backups,
		log:     log,
		locks:   make(map[string]*flock.Flock),
	}
}

// Path returns the backing file for a collection name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) backupPath(name string) string {
	return s.Path(name) + ".backup"
}

// Ping reports whether the data directory is usable. Used by readiness checks.
func (s *Store) Ping() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("data dir %s: %w", s.dir, err)
	}
	return nil
}

// Load reads a collection into out (a pointer to a slice). A missing file
// yields an empty collection. A corrupt file is logged and degraded to
// empty rather than failing the caller.
func (s *Store) Load(ctx context.Context, name string, out any) error {
	lock, err := s.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read collection %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("collection file corrupt, starting empty",
			zap.String("collection", name),
			zap.String("path", s.Path(name)),
			zap.Error(err))
		return nil
	}
	return nil
}

// Save writes the full collection back. The previous version is copied to
// <name>.json.backup first (when backups are enabled) and restored if the
// final rename fails, so a crash mid-write never leaves a half-written file.
func (s *Store) Save(ctx context.Context, name string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	lock, err := s.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	path := s.Path(name)

	if s.backups {
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, s.backupPath(name)); err != nil {
				return fmt.Errorf("backup collection %s: %w", name, err)
			}
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		if s.backups {
			if _, berr := os.Stat(s.backupPath(name)); berr == nil {
				_ = copyFile(s.backupPath(name), path)
			}
		}
		return fmt.Errorf("rename temp file for %s: %w", name, err)
	}

	return nil
}

// acquire takes the advisory lock for a collection, polling with a short
// delay until it is free or ctx expires. The lock lives next to the
// collection file rather than on it so the rename never swaps the inode
// out from under the lock.
func (s *Store) acquire(ctx context.Context, name string) (*flock.Flock, error) {
	s.mu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = flock.New(s.Path(name) + ".lock")
		s.locks[name] = lock
	}
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock collection %s: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock collection %s: not acquired", name)
	}
	return lock, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
