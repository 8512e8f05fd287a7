package dayview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/planner"
)

var (
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model renders one day record read-only in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	Day      *models.DayRecord
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Day == nil {
		return "No history yet."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetDay(day *models.DayRecord) {
	m.Day = day
	m.Render()
}

func rating(r *bool) string {
	switch {
	case r == nil:
		return "not rated"
	case *r:
		return "a good enough day"
	}
	return "a hard day"
}

func (m *Model) Render() {
	if m.Day == nil {
		m.viewport.SetContent("")
		return
	}
	day := *m.Day
	s := day.Stats()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", dateStyle.Render(day.Date), noteStyle.Render(rating(day.DayRating)))
	fmt.Fprintf(&b, "big %d%% · small %d%% · %d/%d done\n\n", s.Big.Rate(), s.Small.Rate(), s.Overall.Done, s.Overall.Total)
	for _, t := range planner.Rank(day.Tasks) {
		mark := "○"
		if t.IsDone {
			mark = "●"
		}
		fmt.Fprintf(&b, "%s %d. %s (%s)\n", mark, t.Rank, taskStyle.Render(t.Title), t.Size)
		if t.Reflection != "" {
			fmt.Fprintf(&b, "     %s\n", t.Reflection)
		}
		if enc := t.EncouragementText(); enc != "" {
			fmt.Fprintf(&b, "     %s\n", noteStyle.Render(enc))
		}
	}
	if summary := day.Summary(); summary != "" {
		fmt.Fprintf(&b, "\n%s\n", summary)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}
