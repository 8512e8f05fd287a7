// Package planner is the phase state machine of a day: planning, working,
// journal and history, and the task operations each phase allows.
//
// Every operation reports whether it changed the state. Invalid input (an
// empty title, an unknown id, the wrong phase) is a silent no-op.
package planner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/threethings/internal/generator"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/rollover"
	"github.com/julianstephens/threethings/internal/utils"
)

// Controller owns one AppState and applies user operations to it.
// It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	state    models.AppState
	gen      generator.Generator
	notifier notifier.Notifier
	now      func() time.Time
	newID    rollover.IDFunc
	// busy is set while a generation call is outstanding
	busy bool
}

// Option configures a Controller
type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDFunc(newID rollover.IDFunc) Option {
	return func(c *Controller) { c.newID = newID }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func New(state models.AppState, gen generator.Generator, opts ...Option) *Controller {
	c := &Controller{
		state:    state.Clone(),
		gen:      gen,
		notifier: notifier.LogNotifier{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state
func (c *Controller) State() models.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Replace swaps in a state delivered by the store
func (c *Controller) Replace(state models.AppState) {
	c.mu.Lock()
	c.state = state.Clone()
	c.mu.Unlock()
}

// Busy reports whether a generation call is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// View returns the current phase
func (c *Controller) View() models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CurrentView
}

func (c *Controller) in(views ...models.View) bool {
	for _, v := range views {
		if c.state.CurrentView == v {
			return true
		}
	}
	return false
}

// AddTask appends a new small task to the inbox.
func (c *Controller) AddTask(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewPlanning) || strings.TrimSpace(title) == "" {
		return false
	}
	day := &c.state.CurrentDay
	day.Inbox = append(day.Inbox, models.NewTask(c.newID(), title))
	return true
}

// RemoveTask deletes id from both the inbox and the committed tasks.
func (c *Controller) RemoveTask(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewPlanning) {
		return false
	}
	day := &c.state.CurrentDay
	inbox, fromInbox := without(day.Inbox, id)
	tasks, fromTasks := without(day.Tasks, id)
	if !fromInbox && !fromTasks {
		return false
	}
	day.Inbox, day.Tasks = inbox, tasks
	return true
}

func without(tasks []models.Task, id string) ([]models.Task, bool) {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out, len(out) != len(tasks)
}

// RenameTask retitles every copy of id.
func (c *Controller) RenameTask(id, title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	title = strings.TrimSpace(title)
	if !c.in(models.ViewPlanning, models.ViewWorking) || title == "" {
		return false
	}
	return c.state.CurrentDay.UpdateTask(id, func(t *models.Task) { t.Title = title })
}

// Reorder moves one inbox entry from index from to index to.
// Out-of-range indices are rejected.
func (c *Controller) Reorder(from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	inbox := c.state.CurrentDay.Inbox
	if !c.in(models.ViewPlanning) || from == to ||
		from < 0 || from >= len(inbox) || to < 0 || to >= len(inbox) {
		return false
	}
	item := inbox[from]
	out := make([]models.Task, 0, len(inbox))
	out = append(out, inbox[:from]...)
	out = append(out, inbox[from+1:]...)
	out = append(out[:to], append([]models.Task{item}, out[to:]...)...)
	c.state.CurrentDay.Inbox = out
	return true
}

// StartDay promotes the inbox into the committed tasks: the first
// BigTaskCount entries become big, the rest small. An empty inbox is first
// refilled from the latest history entry's unfinished small tasks.
func (c *Controller) StartDay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewPlanning) {
		return false
	}
	day := &c.state.CurrentDay
	if len(day.Inbox) == 0 {
		carried, history, ok := rollover.Fallback(c.state.History, c.newID)
		if ok {
			day.Inbox = carried
			c.state.History = history
			logger.Info("Recovered unfinished tasks from previous day", "count", len(carried))
		}
	}
	if len(day.Inbox) == 0 {
		return false
	}

	tasks := make([]models.Task, len(day.Inbox))
	for i, t := range day.Inbox {
		t.Size = models.TaskSizeSmall
		if i < models.BigTaskCount {
			t.Size = models.TaskSizeBig
		}
		tasks[i] = t
	}
	day.Tasks = tasks
	day.IsStarted = true
	c.state.CurrentView = models.ViewWorking
	return true
}

// AdjustPlan returns to planning without touching the tasks.
func (c *Controller) AdjustPlan() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewWorking) {
		return false
	}
	c.state.CurrentView = models.ViewPlanning
	return true
}

// Complete marks a committed task done with reflection and a generated
// encouragement, which it returns. The generator runs without holding the
// lock; a second Complete or SubmitDayEnd while it runs is rejected.
func (c *Controller) Complete(ctx context.Context, id, reflection string) (string, bool) {
	reflection = strings.TrimSpace(reflection)

	c.mu.Lock()
	task, ok := c.committed(id)
	if c.busy || !c.in(models.ViewWorking) || reflection == "" || !ok || task.IsDone {
		c.mu.Unlock()
		return "", false
	}
	c.busy = true
	c.mu.Unlock()

	encouragement := c.gen.Encouragement(ctx, task.Title, task.Size, reflection)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	// The state may have been replaced by the store while generating.
	if current, ok := c.committed(id); !ok || current.IsDone {
		return "", false
	}
	at := c.now()
	c.state.CurrentDay.UpdateTask(id, func(t *models.Task) {
		t.Complete(reflection, encouragement, at)
	})
	return encouragement, true
}

func (c *Controller) committed(id string) (models.Task, bool) {
	for _, t := range c.state.CurrentDay.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// CanEndDay reports whether every task is done, or every big task is done
// with small tasks left over.
func (c *Controller) CanEndDay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return canEndDay(c.state.CurrentDay)
}

func canEndDay(day models.DayRecord) bool {
	if !day.IsStarted || len(day.Tasks) == 0 {
		return false
	}
	allDone, bigDone, smallLeft := true, true, false
	for _, t := range day.Tasks {
		if t.IsDone {
			continue
		}
		allDone = false
		if t.IsBig() {
			bigDone = false
		} else {
			smallLeft = true
		}
	}
	return allDone || (bigDone && smallLeft)
}

// SubmitDayEnd records the day's rating, generates the journal entry and
// moves to the journal phase.
func (c *Controller) SubmitDayEnd(ctx context.Context, rating bool) bool {
	c.mu.Lock()
	if c.busy || !c.in(models.ViewWorking) || !canEndDay(c.state.CurrentDay) {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	date := c.state.CurrentDay.Date
	tasks := c.state.CurrentDay.Clone().Tasks
	c.mu.Unlock()

	entry := c.gen.JournalEntry(ctx, tasks, rating)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.state.CurrentDay.Date != date || !c.in(models.ViewWorking) {
		return false
	}
	at := c.now()
	day := &c.state.CurrentDay
	day.DayRating = &rating
	day.JournalEntry = entry
	day.JournalCreatedAt = &at
	c.state.CurrentView = models.ViewJournal
	return true
}

// BackToWorking leaves the journal without saving it.
func (c *Controller) BackToWorking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewJournal) {
		return false
	}
	c.state.CurrentView = models.ViewWorking
	return true
}

// SaveJournal commits the day to history under its date. An empty entry
// keeps the generated text. When small tasks are unfinished they move into
// a new current day dated the next calendar day and the rollover is
// announced; otherwise the day stays current and the history view opens.
// It returns the number of tasks rolled over.
func (c *Controller) SaveJournal(entry string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewJournal) {
		return 0, false
	}

	day := c.state.CurrentDay.Clone()
	day.Discarded = false
	if text := strings.TrimSpace(entry); text != "" {
		day.JournalEntry = text
	}
	if day.JournalCreatedAt == nil {
		at := c.now()
		day.JournalCreatedAt = &at
	}

	var carried []models.Task
	if !day.RolledOver {
		carried = rollover.Carry(day, c.newID)
	}
	if len(carried) == 0 {
		c.state.History = models.UpsertHistory(c.state.History, day)
		c.state.CurrentDay = day
		c.state.CurrentView = models.ViewHistory
		return 0, true
	}

	next, err := utils.NextDate(day.Date)
	if err != nil {
		logger.Error("Cannot roll over day with invalid date", "date", day.Date, "error", err)
		return 0, false
	}
	day.RolledOver = true
	c.state.History = models.UpsertHistory(c.state.History, day)
	c.state.CurrentDay = models.NewDay(next)
	c.state.CurrentDay.Inbox = carried
	c.state.CurrentView = models.ViewPlanning
	c.state.LastRolloverDate = next

	if err := c.notifier.Notify(notifier.RolloverMessage(len(carried), next)); err != nil {
		logger.Debug("Rollover notification not delivered", "error", err)
	}
	return len(carried), true
}

// ViewHistory opens the history view from any phase.
func (c *Controller) ViewHistory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.in(models.ViewHistory) {
		return false
	}
	c.state.CurrentView = models.ViewHistory
	return true
}

// ReturnFromHistory goes back to working when the day has started, else planning.
func (c *Controller) ReturnFromHistory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.in(models.ViewHistory) {
		return false
	}
	c.state.CurrentView = models.ViewPlanning
	if c.state.CurrentDay.IsStarted {
		c.state.CurrentView = models.ViewWorking
	}
	return true
}
