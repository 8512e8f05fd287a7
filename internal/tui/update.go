package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/storage"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case stateMsg:
		if m.pending > 0 {
			m.dropped = true
			return m, waitForState(m.updates)
		}
		m.ctrl.Replace(msg.state)
		m.refresh()
		return m, waitForState(m.updates)

	case loadedMsg:
		m.ctrl.Replace(msg.state)
		m.refresh()
		return m, nil

	case savedMsg:
		m.pending--
		switch {
		case errors.Is(msg.err, storage.ErrStaleState):
			m.status = "Another session moved to a newer day; reloaded."
			m.dropped = false
			return m, m.reload()
		case msg.err != nil:
			m.err = msg.err
		}
		if m.pending == 0 && m.dropped {
			m.dropped = false
			return m, m.reload()
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case completedMsg:
		if !msg.ok {
			m.status = "Task could not be completed."
			return m, nil
		}
		m.status = msg.encouragement
		return m, m.changed()

	case dayEndedMsg:
		if !msg.ok {
			m.status = "Day could not be ended."
			return m, nil
		}
		m.status = ""
		return m, m.changed()
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m.updateList(msg)
}

// changed refreshes the components and persists the controller state.
func (m *Model) changed() tea.Cmd {
	m.err = nil
	m.refresh()
	return m.save()
}

func (m *Model) apply(ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	return m.changed()
}

func (m *Model) openForm(kind formKind, target string, fm *FormModel, form *huh.Form) tea.Cmd {
	m.state = StateForm
	m.formKind = kind
	m.formData = fm
	m.target = target
	m.form = form
	return m.form.Init()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.ctrl.Busy() {
		return m, nil
	}
	m.status = ""

	if key.Matches(msg, m.keys.History) {
		return m, m.apply(m.ctrl.ViewHistory())
	}

	switch m.ctrl.View() {
	case models.ViewPlanning:
		return m.handlePlanningKey(msg)
	case models.ViewWorking:
		return m.handleWorkingKey(msg)
	case models.ViewJournal:
		return m.handleJournalKey(msg)
	case models.ViewHistory:
		return m.handleHistoryKey(msg)
	}
	return m, nil
}

func (m Model) handlePlanningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, hasSelection := m.tasks.Selected()
	switch {
	case key.Matches(msg, m.keys.Add):
		fm := &FormModel{}
		return m, m.openForm(formAdd, "", fm, NewTitleForm("New task", fm))
	case key.Matches(msg, m.keys.Edit) && hasSelection:
		fm := &FormModel{Text: selected.Title}
		return m, m.openForm(formRename, selected.ID, fm, NewTitleForm("Rename task", fm))
	case key.Matches(msg, m.keys.Delete) && hasSelection:
		return m, m.apply(m.ctrl.RemoveTask(selected.ID))
	case key.Matches(msg, m.keys.MoveUp) && hasSelection:
		return m.move(-1)
	case key.Matches(msg, m.keys.MoveDown) && hasSelection:
		return m.move(1)
	case key.Matches(msg, m.keys.Start):
		if !m.ctrl.StartDay() {
			m.status = "Add at least one task before starting the day."
			return m, nil
		}
		return m, m.changed()
	}
	return m.updateList(msg)
}

func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	from := m.tasks.Index()
	to := from + delta
	if !m.ctrl.Reorder(from, to) {
		return m, nil
	}
	cmd := m.changed()
	m.tasks.Select(to)
	return m, cmd
}

func (m Model) handleWorkingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Complete):
		selected, ok := m.tasks.Selected()
		if !ok || selected.IsDone {
			return m, nil
		}
		fm := &FormModel{}
		return m, m.openForm(formReflect, selected.ID, fm, NewReflectionForm(selected.Title, fm))
	case key.Matches(msg, m.keys.Adjust):
		return m, m.apply(m.ctrl.AdjustPlan())
	case key.Matches(msg, m.keys.EndDay):
		if !m.ctrl.CanEndDay() {
			m.status = "Finish your big tasks before ending the day."
			return m, nil
		}
		fm := &FormModel{Good: true}
		return m, m.openForm(formRating, "", fm, NewRatingForm(fm))
	}
	return m.updateList(msg)
}

func (m Model) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Journal):
		fm := &FormModel{Text: m.ctrl.State().CurrentDay.JournalEntry}
		return m, m.openForm(formJournal, "", fm, NewJournalForm("Journal", true, fm))
	case key.Matches(msg, m.keys.Save):
		return m.saveJournal("")
	case key.Matches(msg, m.keys.Back):
		return m, m.apply(m.ctrl.BackToWorking())
	}
	return m, nil
}

func (m Model) saveJournal(entry string) (tea.Model, tea.Cmd) {
	date := m.ctrl.State().CurrentDay.Date
	carried, ok := m.ctrl.SaveJournal(entry)
	if !ok {
		return m, nil
	}
	m.historyIndex = m.ctrl.State().HistoryIndex(date)
	m.status = "Journal saved."
	if carried > 0 {
		m.status = notifier.RolloverMessage(carried, m.ctrl.State().CurrentDay.Date)
	}
	return m, m.changed()
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	day, hasDay := m.historyDay()
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.apply(m.ctrl.ReturnFromHistory())
	case key.Matches(msg, m.keys.PrevDay):
		if m.historyIndex > 0 {
			m.historyIndex--
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.NextDay):
		if m.historyIndex < len(m.ctrl.State().History)-1 {
			m.historyIndex++
			m.refresh()
		}
		return m, nil
	case !hasDay:
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.historyTasks.Selected()
		if !ok {
			return m, nil
		}
		index := m.historyTasks.Index()
		cmd := m.apply(m.ctrl.ToggleHistoryTask(day.Date, task.ID))
		m.historyTasks.Select(index)
		return m, cmd
	case key.Matches(msg, m.keys.Journal):
		fm := &FormModel{Text: day.JournalEntry}
		title := fmt.Sprintf("Journal for %s", day.Date)
		return m, m.openForm(formHistoryJournal, day.Date, fm, NewJournalForm(title, true, fm))
	case key.Matches(msg, m.keys.Delete):
		m.state = StateConfirmDelete
		m.target = day.Date
		return m, nil
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ctrl.View() {
	case models.ViewHistory:
		m.historyTasks, cmd = m.historyTasks.Update(msg)
	case models.ViewJournal:
	default:
		m.tasks, cmd = m.tasks.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBrowse
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateBrowse
		cmds = append(cmds, m.submitForm())
	case huh.StateAborted:
		m.state = StateBrowse
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) submitForm() tea.Cmd {
	fm := m.formData
	switch m.formKind {
	case formAdd:
		return m.apply(m.ctrl.AddTask(fm.Text))
	case formRename:
		return m.apply(m.ctrl.RenameTask(m.target, fm.Text))
	case formReflect:
		m.status = "Thinking..."
		ctx, ctrl, id, reflection := m.ctx, m.ctrl, m.target, fm.Text
		return func() tea.Msg {
			enc, ok := ctrl.Complete(ctx, id, reflection)
			return completedMsg{encouragement: enc, ok: ok}
		}
	case formRating:
		m.status = "Writing your journal..."
		ctx, ctrl, good := m.ctx, m.ctrl, fm.Good
		return func() tea.Msg {
			return dayEndedMsg{ok: ctrl.SubmitDayEnd(ctx, good)}
		}
	case formJournal:
		next, cmd := m.saveJournal(fm.Text)
		*m = next.(Model)
		return cmd
	case formHistoryJournal:
		return m.apply(m.ctrl.SetHistoryJournal(m.target, fm.Text))
	}
	return nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.state = StateBrowse
		if m.ctrl.DeleteHistoryDay(m.target) {
			m.status = fmt.Sprintf("Deleted %s.", m.target)
			return m, m.changed()
		}
	case "n", "N", "esc":
		m.state = StateBrowse
	}
	return m, nil
}

func (m *Model) resize() {
	h, v := docStyle.GetFrameSize()
	width := m.width - h
	height := m.height - v - 6
	m.tasks.SetSize(width, height)
	m.day.SetSize(width, height/2)
	m.historyTasks.SetSize(width, height-height/2)
}
