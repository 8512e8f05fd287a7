// Package validation checks a state document for records that the planner
// would never produce on its own, such as hand-edited or merged documents.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate          ConflictType = "invalid_date"
	ConflictDuplicateHistoryDate ConflictType = "duplicate_history_date"
	ConflictHistoryOrder         ConflictType = "history_order"
	ConflictDuplicateTaskID      ConflictType = "duplicate_task_id"
	ConflictEmptyTitle           ConflictType = "empty_title"
	ConflictTooManyBigTasks      ConflictType = "too_many_big_tasks"
	ConflictDoneWithoutTimestamp ConflictType = "done_without_timestamp"
)

// Conflict represents one problem found in the document
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // day the conflict was found in, if any
	TaskIDs     []string // tasks involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction describes one repair made by Fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator validates state documents
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateState checks the current day and every archived day.
func (v *Validator) ValidateState(state models.AppState) ValidationResult {
	var result ValidationResult
	result.Conflicts = append(result.Conflicts, v.ValidateDay(state.CurrentDay).Conflicts...)

	seen := make(map[string]bool)
	for i, day := range state.History {
		if seen[day.Date] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHistoryDate,
				Description: fmt.Sprintf("history has more than one record for %s", day.Date),
				Date:        day.Date,
			})
		}
		seen[day.Date] = true

		if i > 0 && day.Date > state.History[i-1].Date {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictHistoryOrder,
				Description: fmt.Sprintf("history record %s is listed after the older %s", day.Date, state.History[i-1].Date),
				Date:        day.Date,
			})
		}
		result.Conflicts = append(result.Conflicts, v.ValidateDay(day).Conflicts...)
	}
	return result
}

// ValidateDay checks one day record.
func (v *Validator) ValidateDay(day models.DayRecord) ValidationResult {
	var result ValidationResult
	add := func(t ConflictType, ids []string, format string, args ...any) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        t,
			Description: fmt.Sprintf("%s: ", day.Date) + fmt.Sprintf(format, args...),
			Date:        day.Date,
			TaskIDs:     ids,
		})
	}

	if !utils.ValidateDate(day.Date) {
		add(ConflictInvalidDate, nil, "invalid date %q", day.Date)
	}

	for name, tasks := range map[string][]models.Task{"tasks": day.Tasks, "inbox": day.Inbox} {
		ids := make(map[string]bool)
		for _, t := range tasks {
			if ids[t.ID] {
				add(ConflictDuplicateTaskID, []string{t.ID}, "task id %s appears more than once in %s", t.ID, name)
			}
			ids[t.ID] = true
			if strings.TrimSpace(t.Title) == "" {
				add(ConflictEmptyTitle, []string{t.ID}, "task %s in %s has no title", t.ID, name)
			}
		}
	}

	big := 0
	for _, t := range day.Tasks {
		if t.IsBig() {
			big++
		}
		if t.IsDone && t.DoneAt == nil {
			add(ConflictDoneWithoutTimestamp, []string{t.ID}, "task %q is done but has no completion time", t.Title)
		}
	}
	if big > models.BigTaskCount {
		add(ConflictTooManyBigTasks, nil, "%d big tasks, at most %d allowed", big, models.BigTaskCount)
	}

	// Conflicts from the map iteration above come out in random order
	sort.SliceStable(result.Conflicts, func(i, j int) bool {
		return result.Conflicts[i].Description < result.Conflicts[j].Description
	})
	return result
}

// Fix repairs the history conflicts it can resolve without guessing: duplicate
// dates keep the first record and history is re-sorted newest first. Day
// contents are left alone.
func Fix(state *models.AppState, conflicts []Conflict) []FixAction {
	var actions []FixAction
	for _, conflict := range conflicts {
		switch conflict.Type {
		case ConflictDuplicateHistoryDate:
			removed := dropDuplicates(state, conflict.Date)
			if removed > 0 {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Removed %d duplicate record(s) for %s", removed, conflict.Date),
					SourceConflict: conflict,
				})
			}
		case ConflictHistoryOrder:
			if sorted := sortHistory(state); sorted {
				actions = append(actions, FixAction{
					Action:         "Sorted history newest first",
					SourceConflict: conflict,
				})
			}
		}
	}
	return actions
}

func dropDuplicates(state *models.AppState, date string) int {
	out := make([]models.DayRecord, 0, len(state.History))
	removed := 0
	seen := false
	for _, day := range state.History {
		if day.Date == date {
			if seen {
				removed++
				continue
			}
			seen = true
		}
		out = append(out, day)
	}
	state.History = out
	return removed
}

func sortHistory(state *models.AppState) bool {
	if sort.SliceIsSorted(state.History, func(i, j int) bool { return state.History[i].Date > state.History[j].Date }) {
		return false
	}
	sort.SliceStable(state.History, func(i, j int) bool {
		return state.History[i].Date > state.History[j].Date
	})
	return true
}
