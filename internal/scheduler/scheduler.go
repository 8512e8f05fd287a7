// Package scheduler watches for the local calendar date to change while a
// long-running session is open and reloads the state when it does, so the
// store performs the day rollover without waiting for a user action.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
)

// Loader reads the reconciled state for the current local date.
// *storage.Adapter implements it.
type Loader interface {
	Load(ctx context.Context) (models.AppState, error)
	Today() string
}

// DayWatcher polls the local date and reloads the state on a change.
type DayWatcher struct {
	loader   Loader
	onChange func(models.AppState)
	every    time.Duration

	mu    sync.Mutex
	last  string
	sched gocron.Scheduler
}

// Option configures a DayWatcher
type Option func(*DayWatcher)

// WithInterval sets how often the date is checked
func WithInterval(every time.Duration) Option {
	return func(w *DayWatcher) { w.every = every }
}

func New(loader Loader, onChange func(models.AppState), opts ...Option) *DayWatcher {
	w := &DayWatcher{
		loader:   loader,
		onChange: onChange,
		every:    constants.DayCheckEvery,
		last:     loader.Today(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start schedules the check. The job stops when ctx is done or Stop is called.
func (w *DayWatcher) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.every),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			if _, err := w.Check(ctx); err != nil {
				logger.Warn("Day check failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule day check: %w", err)
	}

	w.mu.Lock()
	w.sched = s
	w.mu.Unlock()
	s.Start()
	logger.Debug("Day watcher started", "interval", w.every, "date", w.loader.Today())
	return nil
}

// Stop shuts the scheduler down, waiting for a running check to finish.
func (w *DayWatcher) Stop() error {
	w.mu.Lock()
	s := w.sched
	w.sched = nil
	w.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// Check reloads the state when the local date differs from the last one
// seen and reports whether it did.
func (w *DayWatcher) Check(ctx context.Context) (bool, error) {
	today := w.loader.Today()
	w.mu.Lock()
	last := w.last
	w.mu.Unlock()
	if today == last {
		return false, nil
	}

	state, err := w.loader.Load(ctx)
	if err != nil {
		return false, err
	}
	w.mu.Lock()
	w.last = today
	w.mu.Unlock()
	logger.Info("Local date changed", "from", last, "to", today)
	if w.onChange != nil {
		w.onChange(state)
	}
	return true, nil
}
