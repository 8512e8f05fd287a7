package planner

import (
	"strings"

	"github.com/julianstephens/threethings/internal/models"
)

// ToggleHistoryTask flips the done flag of a task in an archived day. The
// reflection and encouragement are kept as they are.
func (c *Controller) ToggleHistoryTask(date, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editHistory(date, func(day *models.DayRecord) bool {
		return day.UpdateTask(id, func(t *models.Task) { t.IsDone = !t.IsDone })
	})
}

// SetHistoryJournal replaces an archived day's journal text and restamps it.
func (c *Controller) SetHistoryJournal(date, entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry = strings.TrimSpace(entry)
	at := c.now()
	return c.editHistory(date, func(day *models.DayRecord) bool {
		day.JournalEntry = entry
		day.JournalCreatedAt = &at
		return true
	})
}

// DeleteHistoryDay removes the archived record for date. A current day with
// the same date is marked discarded so the next rollover does not archive it
// again.
func (c *Controller) DeleteHistoryDay(date string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.state.HistoryIndex(date)
	if i < 0 {
		return false
	}
	history := make([]models.DayRecord, 0, len(c.state.History)-1)
	history = append(history, c.state.History[:i]...)
	c.state.History = append(history, c.state.History[i+1:]...)
	if c.state.CurrentDay.Date == date {
		c.state.CurrentDay.Discarded = true
	}
	return true
}

// editHistory applies fn to the archived day for date. A current day that was
// journaled without rolling over shares its date with the archive and gets the
// same edit, so a later archive does not undo it.
func (c *Controller) editHistory(date string, fn func(*models.DayRecord) bool) bool {
	i := c.state.HistoryIndex(date)
	if i < 0 {
		return false
	}
	day := c.state.History[i].Clone()
	if !fn(&day) {
		return false
	}
	c.state.History = models.UpsertHistory(c.state.History, day)
	if c.state.CurrentDay.Date == date {
		fn(&c.state.CurrentDay)
	}
	return true
}

// RankedTask is a committed task with its display rank
type RankedTask struct {
	models.Task
	Rank int
}

// Ranked lists the committed tasks with big tasks ranked 1..n in order and
// small tasks numbered after them.
func (c *Controller) Ranked() []RankedTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Rank(c.state.CurrentDay.Tasks)
}

// Rank numbers tasks for display: big first, then small, each in list order.
func Rank(tasks []models.Task) []RankedTask {
	var big, small []models.Task
	for _, t := range tasks {
		if t.IsBig() {
			big = append(big, t)
		} else {
			small = append(small, t)
		}
	}
	out := make([]RankedTask, 0, len(tasks))
	for i, t := range big {
		out = append(out, RankedTask{Task: t, Rank: i + 1})
	}
	for i, t := range small {
		out = append(out, RankedTask{Task: t, Rank: len(big) + i + 1})
	}
	return out
}

// Progress returns completed and total committed task counts
func (c *Controller) Progress() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state.CurrentDay.Stats()
	return s.Overall.Done, s.Overall.Total
}
