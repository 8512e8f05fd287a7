// Package storage keeps the application-state document behind a uniform
// load/subscribe/save contract and runs day reconciliation on every read.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Backend.Read when no document exists yet
	ErrNotFound = errors.New("state document not found")
	// ErrConflict is returned by Backend.Write when the stored revision does not match
	ErrConflict = errors.New("state document was modified concurrently")
	// ErrStaleState is returned by Adapter.Save when the stored document already
	// carries a newer day than the one being saved
	ErrStaleState = errors.New("state is older than the stored document; reload and retry")
	// ErrSaveFailed wraps transient backend failures that outlasted the retry budget
	ErrSaveFailed = errors.New("state could not be saved; try again")
)

// Document is a raw stored state document and its revision.
// Revisions start at 1 and increase by one with every successful write.
type Document struct {
	Data     []byte
	Revision int64
}

// Backend is the persistence transport for the single state document.
type Backend interface {
	// Read returns the stored document or ErrNotFound.
	Read(ctx context.Context) (Document, error)
	// Write stores data if the current revision equals expected (0 creates the
	// document) and returns the new revision, or ErrConflict.
	Write(ctx context.Context, data []byte, expected int64) (int64, error)
	// Watch signals after the document may have changed. The channel is
	// closed when ctx is done. Signals can be duplicated or coalesced.
	Watch(ctx context.Context) (<-chan struct{}, error)
	// Location describes where the document lives, for status output.
	Location() string
	Close() error
}

// Migrator is implemented by backends with a managed SQL schema
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}

// Provisioner is implemented by backends that are created once by `init`
// and opened afterwards.
type Provisioner interface {
	Init() error
	Load() error
}
