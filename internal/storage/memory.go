package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps the document in process. Used by tests and --config :memory:.
type MemoryBackend struct {
	mu       sync.Mutex
	data     []byte
	revision int64
	writes   int
	watchers map[int]chan struct{}
	nextID   int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{watchers: make(map[int]chan struct{})}
}

func (m *MemoryBackend) Read(ctx context.Context) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revision == 0 {
		return Document{}, ErrNotFound
	}
	return Document{Data: append([]byte(nil), m.data...), Revision: m.revision}, nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected != m.revision {
		return 0, ErrConflict
	}
	m.data = append([]byte(nil), data...)
	m.revision++
	m.writes++
	m.notifyLocked()
	return m.revision, nil
}

func (m *MemoryBackend) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// Notify signals every watcher without changing the document.
func (m *MemoryBackend) Notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyLocked()
}

func (m *MemoryBackend) notifyLocked() {
	for _, ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Writes returns the number of successful writes
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryBackend) Location() string { return ":memory:" }

func (m *MemoryBackend) Close() error { return nil }
