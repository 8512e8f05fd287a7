package rollover

import (
	"github.com/julianstephens/threethings/internal/models"
)

// Guard runs reconciliation against a document at most once per date. The
// marker it checks is the document's own lastRolloverDate, so two adapters
// (or two processes) reading the same snapshot agree on whether the rollover
// for a date has already been committed.
type Guard struct {
	NewID IDFunc
}

func NewGuard(newID IDFunc) *Guard {
	return &Guard{NewID: newID}
}

// Apply reconciles state in place for today and reports whether it changed.
func (g *Guard) Apply(state *models.AppState, today string) bool {
	if state.LastRolloverDate != "" && state.LastRolloverDate >= today {
		return false
	}

	day, history, changed := Reconcile(state.CurrentDay, state.History, today, g.NewID)
	if !changed {
		return false
	}

	state.CurrentDay = day
	state.History = history
	state.CurrentView = models.ViewPlanning
	state.LastRolloverDate = today
	return true
}
