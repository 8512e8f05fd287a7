// Package rollover decides when the current day is archived and which
// unfinished tasks are carried into the next day. Nothing here performs I/O
// or reads the clock; callers pass today's local date in.
package rollover

import (
	"github.com/julianstephens/threethings/internal/models"
)

// IDFunc produces a fresh task identifier
type IDFunc func() string

// Reconcile archives current into history and starts a fresh day when the
// calendar date has advanced past current.Date. It reports whether anything
// changed. Inputs are never mutated.
func Reconcile(current models.DayRecord, history []models.DayRecord, today string, newID IDFunc) (models.DayRecord, []models.DayRecord, bool) {
	// Dates compare lexically in YYYY-MM-DD form. A day dated in the future
	// (pre-created by a journal commit) is left alone until its date arrives.
	if current.Date >= today {
		return current, history, false
	}

	archived := current.Clone()
	var carried []models.Task
	if !archived.RolledOver {
		carried = Carry(archived, newID)
		archived.RolledOver = len(carried) > 0
	}

	next := models.NewDay(today)
	if len(carried) > 0 {
		next.Inbox = carried
	}

	if archived.Discarded {
		return next, history, true
	}
	return next, models.UpsertHistory(history, archived), true
}

// Candidates returns the unfinished small tasks of day, de-duplicated by id,
// committed tasks first.
func Candidates(day models.DayRecord) []models.Task {
	seen := make(map[string]struct{})
	var out []models.Task
	collect := func(tasks []models.Task) {
		for _, t := range tasks {
			if t.Size != models.TaskSizeSmall || t.IsDone {
				continue
			}
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	collect(day.Tasks)
	collect(day.Inbox)
	return out
}

// Carry returns fresh copies of day's rollover candidates.
func Carry(day models.DayRecord, newID IDFunc) []models.Task {
	candidates := Candidates(day)
	out := make([]models.Task, 0, len(candidates))
	for _, t := range candidates {
		out = append(out, t.RolloverCopy(newID()))
	}
	return out
}

// Fallback recovers unfinished small tasks from the most recent history entry
// when a day was abandoned without a date change being observed. The entry is
// marked rolled over in the returned history so it is never carried twice.
func Fallback(history []models.DayRecord, newID IDFunc) ([]models.Task, []models.DayRecord, bool) {
	if len(history) == 0 || history[0].RolledOver {
		return nil, history, false
	}
	carried := Carry(history[0], newID)
	if len(carried) == 0 {
		return nil, history, false
	}

	out := make([]models.DayRecord, len(history))
	copy(out, history)
	latest := history[0].Clone()
	latest.RolledOver = true
	out[0] = latest
	return carried, out, true
}
