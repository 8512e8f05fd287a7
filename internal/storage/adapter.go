package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/rollover"
	"github.com/julianstephens/threethings/internal/utils"
)

// Adapter reads and writes the state document through a Backend. Every read
// is reconciled against today's date before it is returned; the rollover it
// produces is written back with a compare-and-set against the revision read.
type Adapter struct {
	backend Backend
	guard   *rollover.Guard
	today   func() string

	maxRetries uint64
	retryBase  time.Duration

	mu       sync.Mutex
	revision int64
}

// Option configures an Adapter
type Option func(*Adapter)

// WithToday injects the local-date source
func WithToday(today func() string) Option {
	return func(a *Adapter) { a.today = today }
}

// WithIDFunc injects the id source used for rolled-over tasks
func WithIDFunc(newID rollover.IDFunc) Option {
	return func(a *Adapter) { a.guard = rollover.NewGuard(newID) }
}

// WithRetry overrides the retry budget for conflicting or failing writes
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(a *Adapter) {
		a.maxRetries = maxRetries
		a.retryBase = base
	}
}

func NewAdapter(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend:    backend,
		guard:      rollover.NewGuard(uuid.NewString),
		today:      utils.TodayFunc(time.Now, time.Local),
		maxRetries: constants.SaveMaxRetries,
		retryBase:  constants.SaveRetryBase,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Backend returns the underlying transport
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Today returns the local date the adapter reconciles against
func (a *Adapter) Today() string {
	return a.today()
}

// Close closes the backend
func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Revision returns the last revision this adapter read or wrote
func (a *Adapter) Revision() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.revision
}

func (a *Adapter) setRevision(rev int64) {
	a.mu.Lock()
	a.revision = rev
	a.mu.Unlock()
}

func (a *Adapter) backoff() retry.Backoff {
	return retry.WithMaxRetries(a.maxRetries, retry.NewExponential(a.retryBase))
}

// Load returns the reconciled state, creating the document when none exists.
func (a *Adapter) Load(ctx context.Context) (models.AppState, error) {
	var state models.AppState
	err := retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		s, _, err := a.sync(ctx)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to load state: %w", err)
	}
	return state, nil
}

// sync performs one read-reconcile-write pass. Only a reconciliation that
// changed the document is written; an unmodified read is never echoed back.
func (a *Adapter) sync(ctx context.Context) (models.AppState, int64, error) {
	today := a.today()

	doc, err := a.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		state := models.NewState(today)
		rev, err := a.write(ctx, state, 0)
		if err != nil {
			return models.AppState{}, 0, err
		}
		logger.Info("Created state document", "location", a.backend.Location(), "date", today)
		return state, rev, nil
	}
	if err != nil {
		return models.AppState{}, 0, retry.RetryableError(fmt.Errorf("failed to read state: %w", err))
	}

	state, err := models.DecodeState(doc.Data)
	if err != nil {
		return models.AppState{}, 0, err
	}
	if !a.guard.Apply(&state, today) {
		a.setRevision(doc.Revision)
		return state, doc.Revision, nil
	}

	rev, err := a.write(ctx, state, doc.Revision)
	if err != nil {
		return models.AppState{}, 0, err
	}
	logger.Info("Rolled over to new day", "date", today, "carried", len(state.CurrentDay.Inbox))
	return state, rev, nil
}

// write encodes and stores state, marking conflicts and transport errors retryable.
func (a *Adapter) write(ctx context.Context, state models.AppState, expected int64) (int64, error) {
	data, err := models.EncodeState(state)
	if err != nil {
		return 0, err
	}
	rev, err := a.backend.Write(ctx, data, expected)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			logger.Debug("State write conflicted", "expected", expected)
			return 0, retry.RetryableError(err)
		}
		return 0, retry.RetryableError(fmt.Errorf("%w: %w", ErrSaveFailed, err))
	}
	a.setRevision(rev)
	return rev, nil
}

// Save writes the whole document. The stored document is read before every
// write attempt and the write is a compare-and-set against that read, so a
// document that has already moved to a later day is never overwritten:
// ErrStaleState is returned instead. Otherwise the last writer wins.
func (a *Adapter) Save(ctx context.Context, state models.AppState) error {
	err := retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		var expected int64
		doc, err := a.backend.Read(ctx)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return retry.RetryableError(fmt.Errorf("failed to read state: %w", err))
		default:
			stored, derr := models.DecodeState(doc.Data)
			if derr != nil {
				return derr
			}
			if isNewerDay(stored, state) {
				a.setRevision(doc.Revision)
				return ErrStaleState
			}
			expected = doc.Revision
		}
		_, err = a.write(ctx, state, expected)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// isNewerDay reports whether stored has been rolled past ours.
func isNewerDay(stored, ours models.AppState) bool {
	return stored.LastRolloverDate > ours.LastRolloverDate || stored.CurrentDay.Date > ours.CurrentDay.Date
}

// Update runs a read-modify-write cycle. fn reports whether it changed the
// state; the whole cycle is retried when the write conflicts, so fn may run
// more than once and must only mutate the state it is given.
func (a *Adapter) Update(ctx context.Context, fn func(*models.AppState) (bool, error)) (models.AppState, error) {
	var out models.AppState
	err := retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		state, rev, err := a.sync(ctx)
		if err != nil {
			return err
		}
		changed, err := fn(&state)
		if err != nil {
			return err
		}
		if changed {
			if _, err := a.write(ctx, state, rev); err != nil {
				return err
			}
		}
		out = state
		return nil
	})
	if err != nil {
		return models.AppState{}, err
	}
	return out, nil
}

// Subscribe delivers the reconciled state immediately and again after every
// change reported by the backend. Notifications that do not advance the
// revision are dropped. Callbacks run one at a time. The returned function
// stops the subscription; it must not be called from inside onChange.
func (a *Adapter) Subscribe(ctx context.Context, onChange func(models.AppState)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	events, err := a.backend.Watch(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch state: %w", err)
	}

	var (
		state models.AppState
		seen  int64
	)
	err = retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
		s, rev, err := a.sync(ctx)
		if err != nil {
			return err
		}
		state, seen = s, rev
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	onChange(state)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
			}

			var (
				next models.AppState
				rev  int64
			)
			err := retry.Do(ctx, a.backoff(), func(ctx context.Context) error {
				s, r, err := a.sync(ctx)
				if err != nil {
					return err
				}
				next, rev = s, r
				return nil
			})
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("Failed to refresh state after change", "error", err)
				}
				continue
			}
			if rev <= seen || ctx.Err() != nil {
				continue
			}
			seen = rev
			onChange(next)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}
