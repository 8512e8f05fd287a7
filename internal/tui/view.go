package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/threethings/internal/models"
)

var phases = []struct {
	view  models.View
	title string
}{
	{models.ViewPlanning, "Plan"},
	{models.ViewWorking, "Work"},
	{models.ViewJournal, "Journal"},
	{models.ViewHistory, "History"},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateForm:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		switch m.ctrl.View() {
		case models.ViewPlanning:
			content = m.viewPlanning()
		case models.ViewWorking:
			content = m.viewWorking()
		case models.ViewJournal:
			content = m.viewJournal()
		case models.ViewHistory:
			content = m.viewHistory()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	current := m.ctrl.View()
	var tabs []string
	for _, p := range phases {
		if p.view == current {
			tabs = append(tabs, activeTabStyle.Render(p.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(p.title))
		}
	}
	tabs = append(tabs, progressStyle.Render("  "+m.ctrl.State().CurrentDay.Date))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return dangerStyle.Render("Error: " + m.err.Error())
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewPlanning() string {
	header := fmt.Sprintf("What matters today? The first %d tasks are your big things.", models.BigTaskCount)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.tasks.View()))
}

func (m Model) viewWorking() string {
	done, total := m.ctrl.Progress()
	header := progressStyle.Render(fmt.Sprintf("%d of %d done", done, total))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.tasks.View()))
}

func (m Model) viewJournal() string {
	day := m.ctrl.State().CurrentDay
	rating := "Good enough"
	if day.DayRating != nil && !*day.DayRating {
		rating = "Not great"
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		progressStyle.Render("Today felt: "+rating),
		"",
		day.JournalEntry,
	))
}

func (m Model) viewHistory() string {
	if len(m.ctrl.State().History) == 0 {
		return docStyle.Render("No days recorded yet.")
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.day.View(), m.historyTasks.View()))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete the record for %s?", m.target)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
