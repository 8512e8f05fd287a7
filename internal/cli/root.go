package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/threethings/internal/backup"
	"github.com/julianstephens/threethings/internal/config"
	"github.com/julianstephens/threethings/internal/generator"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/planner"
	"github.com/julianstephens/threethings/internal/storage"
	"github.com/julianstephens/threethings/internal/storage/local"
	"github.com/julianstephens/threethings/internal/storage/postgres"
	"github.com/julianstephens/threethings/internal/storage/sqlite"
)

type Context struct {
	// Base is cancelled when the process is interrupted.
	Base      context.Context
	Backend   config.Backend
	Store     storage.Backend
	Adapter   *storage.Adapter
	Generator generator.Generator
	Notifier  notifier.Notifier
	Out       io.Writer
}

// Ctx returns the context commands run under
func (c *Context) Ctx() context.Context {
	if c.Base == nil {
		return context.Background()
	}
	return c.Base
}

// Stdout returns the command output writer
func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// NewStore constructs the transport selected by b without opening it.
func NewStore(b config.Backend) (storage.Backend, error) {
	switch b.Kind {
	case config.BackendMemory:
		return storage.NewMemoryBackend(), nil
	case config.BackendSQLite:
		return sqlite.NewStore(b.Location), nil
	case config.BackendLocal:
		return local.New(b.Location), nil
	case config.BackendPostgres:
		if !b.FromSecret {
			if err := postgres.ValidateConnString(b.Location); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return nil, errors.New("PostgreSQL connection strings with embedded credentials are not allowed; store the full connection string with 'threethings keyring set connection-string', export THREETHINGS_DB_CONNECTION, or use .pgpass")
				}
				return nil, err
			}
		}
		return postgres.New(b.Location), nil
	}
	return nil, fmt.Errorf("unsupported backend: %q", b.Kind)
}

// Open opens an existing store. Backends without a provisioning step are
// always ready.
func (c *Context) Open() error {
	if p, ok := c.Store.(storage.Provisioner); ok {
		return p.Load()
	}
	return nil
}

// Provision creates the store and its schema.
func (c *Context) Provision() error {
	if p, ok := c.Store.(storage.Provisioner); ok {
		return p.Init()
	}
	return nil
}

// Controller wraps state in a planner wired to this context's collaborators.
func (c *Context) Controller(state models.AppState) *planner.Controller {
	n := c.Notifier
	if n == nil {
		n = notifier.LogNotifier{}
	}
	return planner.New(state, c.Generator,
		planner.WithNotifier(n),
		planner.WithIDFunc(uuid.NewString),
	)
}

// Update loads the reconciled state, applies op through a planner and
// writes the result when op reports a change.
func (c *Context) Update(ctx context.Context, op func(*planner.Controller) bool) (models.AppState, bool, error) {
	var changed bool
	state, err := c.Adapter.Update(ctx, func(s *models.AppState) (bool, error) {
		ctrl := c.Controller(*s)
		changed = op(ctrl)
		if !changed {
			return false, nil
		}
		*s = ctrl.State()
		return true, nil
	})
	return state, changed, err
}

// UpdateTask resolves prefix against the current day and applies op to the
// matching task id.
func (c *Context) UpdateTask(ctx context.Context, prefix string, op func(p *planner.Controller, id string) bool) (models.AppState, bool, error) {
	var resolveErr error
	state, changed, err := c.Update(ctx, func(p *planner.Controller) bool {
		id, err := ResolveTaskID(p.State().CurrentDay, prefix)
		if err != nil {
			resolveErr = err
			return false
		}
		resolveErr = nil
		return op(p, id)
	})
	if err != nil {
		return state, false, err
	}
	return state, changed, resolveErr
}

// NotAllowed explains an operation the current phase rejected
func NotAllowed(state models.AppState, action string) error {
	return fmt.Errorf("cannot %s while in the %s view", action, state.CurrentView)
}

// PerformAutomaticBackup backs up a SQLite store and logs failures
func (c *Context) PerformAutomaticBackup() {
	if c.Backend.Kind != config.BackendSQLite {
		return
	}
	mgr := backup.NewManager(c.Backend.Location)
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveTaskID finds the task in day whose id equals or uniquely starts with prefix.
func ResolveTaskID(day models.DayRecord, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errors.New("task id cannot be empty")
	}
	matches := make(map[string]struct{})
	for _, list := range [][]models.Task{day.Tasks, day.Inbox} {
		for _, t := range list {
			if t.ID == prefix {
				return t.ID, nil
			}
			if strings.HasPrefix(t.ID, prefix) {
				matches[t.ID] = struct{}{}
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", prefix)
	case 1:
		for id := range matches {
			return id, nil
		}
	}
	ids := make([]string, 0, len(matches))
	for id := range matches {
		ids = append(ids, ShortID(id))
	}
	sort.Strings(ids)
	return "", fmt.Errorf("task id %q is ambiguous: %s", prefix, strings.Join(ids, ", "))
}

// ShortID is the id prefix shown in listings
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var (
	doneMark    = color.New(color.FgGreen).Sprint("✓")
	pendingMark = color.New(color.FgYellow).Sprint("·")
)

// StatusMark renders a task's completion state
func StatusMark(t models.Task) string {
	if t.IsDone {
		return doneMark
	}
	return pendingMark
}

// RatingText renders a day rating
func RatingText(r *bool) string {
	switch {
	case r == nil:
		return "-"
	case *r:
		return "good"
	}
	return "bad"
}

// TaskTable renders ranked tasks, one row each.
func TaskTable(tasks []planner.RankedTask) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", "#", "ID", "SIZE", "TASK")
	for _, t := range tasks {
		tbl.AddRow(StatusMark(t.Task), t.Rank, ShortID(t.ID), t.Size, t.Title)
	}
	return tbl
}

// InboxTable renders the planning list in order.
func InboxTable(inbox []models.Task) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("#", "ID", "TASK")
	for i, t := range inbox {
		title := t.Title
		if t.RolledFrom != "" {
			title += " (carried over)"
		}
		tbl.AddRow(i+1, ShortID(t.ID), title)
	}
	return tbl
}

// PrintDay writes the current day in the layout its phase calls for.
func (c *Context) PrintDay(state models.AppState) {
	day := state.CurrentDay
	c.Printf("%s  [%s]\n\n", day.Date, state.CurrentView)
	switch {
	case state.CurrentView == models.ViewPlanning || !day.IsStarted:
		if len(day.Inbox) == 0 {
			c.Println("Nothing planned yet. Add tasks with 'threethings add <title>'.")
			return
		}
		c.Println(InboxTable(day.Inbox))
		c.Printf("\nThe first %d become today's big tasks when you run 'threethings start'.\n", models.BigTaskCount)
	default:
		c.Println(TaskTable(planner.Rank(day.Tasks)))
		s := day.Stats()
		c.Printf("\n%d/%d done (big %d/%d, small %d/%d)\n",
			s.Overall.Done, s.Overall.Total, s.Big.Done, s.Big.Total, s.Small.Done, s.Small.Total)
		if state.CurrentView == models.ViewJournal || day.JournalEntry != "" {
			c.Printf("\nJournal (%s):\n%s\n", RatingText(day.DayRating), day.Summary())
		}
	}
}
