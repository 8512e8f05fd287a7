package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/threethings/internal/planner"
)

type Item struct {
	Task    planner.RankedTask
	Planned bool
}

func (i Item) Title() string {
	mark := "○"
	if i.Task.IsDone {
		mark = "●"
	}
	if i.Planned {
		return fmt.Sprintf("%d. %s", i.Task.Rank, i.Task.Title)
	}
	return fmt.Sprintf("%s %d. %s", mark, i.Task.Rank, i.Task.Title)
}

func (i Item) Description() string {
	switch {
	case i.Planned && i.Task.RolledFrom != "":
		return "carried over"
	case i.Planned:
		return ""
	case i.Task.IsDone:
		return fmt.Sprintf("%s · %s", i.Task.Size, i.Task.Reflection)
	}
	return string(i.Task.Size)
}

func (i Item) FilterValue() string { return i.Task.Title }

type Model struct {
	list  list.Model
	empty string
}

func New(empty string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return Model{list: l, empty: empty}
}

// SetTasks replaces the items. Planned items are shown as an ordered list
// without completion marks.
func (m *Model) SetTasks(tasks []planner.RankedTask, planned bool) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = Item{Task: t, Planned: planned}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted task
func (m Model) Selected() (planner.RankedTask, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Task, ok
}

func (m Model) Index() int {
	return m.list.Index()
}

func (m *Model) Select(i int) {
	m.list.Select(i)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
