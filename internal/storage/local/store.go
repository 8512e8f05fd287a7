// Package local is the local-only fallback store: one diskv key holding the
// document and its revision, guarded by a file lock across processes.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/storage"
)

const (
	dataDir  = "data"
	tempDir  = "tmp"
	lockName = "store.lock"
)

// envelope is the stored value
type envelope struct {
	Revision int64           `json:"revision"`
	State    json.RawMessage `json:"state"`
}

type Store struct {
	dir  string
	kv   *diskv.Diskv
	lock *flock.Flock
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		kv: diskv.New(diskv.Options{
			BasePath: filepath.Join(dir, dataDir),
			TempDir:  filepath.Join(dir, tempDir),
			// No cache: other processes write the same key.
			CacheSizeMax: 0,
		}),
		lock: flock.New(filepath.Join(dir, lockName)),
	}
}

// Init creates the store directories.
func (s *Store) Init() error {
	for _, d := range []string{s.dir, filepath.Join(s.dir, dataDir), filepath.Join(s.dir, tempDir)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return nil
}

// Load checks that Init has run.
func (s *Store) Load() error {
	if _, err := os.Stat(filepath.Join(s.dir, dataDir)); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	return nil
}

func (s *Store) Location() string {
	return s.dir
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) read() (envelope, error) {
	if !s.kv.Has(constants.LocalStorageKey) {
		return envelope{}, storage.ErrNotFound
	}
	raw, err := s.kv.Read(constants.LocalStorageKey)
	if err != nil {
		if os.IsNotExist(err) {
			return envelope{}, storage.ErrNotFound
		}
		return envelope{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("failed to parse %s: %w", constants.LocalStorageKey, err)
	}
	return env, nil
}

func (s *Store) Read(ctx context.Context) (storage.Document, error) {
	env, err := s.read()
	if err != nil {
		return storage.Document{}, err
	}
	return storage.Document{Data: env.State, Revision: env.Revision}, nil
}

func (s *Store) Write(ctx context.Context, data []byte, expected int64) (int64, error) {
	locked, err := s.lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire store lock: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("failed to acquire store lock")
	}
	defer s.lock.Unlock()

	var current int64
	env, err := s.read()
	switch {
	case err == nil:
		current = env.Revision
	case err != storage.ErrNotFound:
		return 0, err
	}
	if current != expected {
		return 0, storage.ErrConflict
	}

	raw, err := json.Marshal(envelope{Revision: expected + 1, State: data})
	if err != nil {
		return 0, err
	}
	if err := s.kv.Write(constants.LocalStorageKey, raw); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", constants.LocalStorageKey, err)
	}
	return expected + 1, nil
}

// Watch reports writes to the document file made by any process.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	base := filepath.Join(s.dir, dataDir)
	if err := os.MkdirAll(base, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(base); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", base, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("Local store watcher error", "error", err)
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != constants.LocalStorageKey {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
