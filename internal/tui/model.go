package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/threethings/internal/generator"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/planner"
	"github.com/julianstephens/threethings/internal/scheduler"
	"github.com/julianstephens/threethings/internal/storage"
	"github.com/julianstephens/threethings/internal/tui/components/dayview"
	"github.com/julianstephens/threethings/internal/tui/components/tasklist"
)

type SessionState int

const (
	StateBrowse SessionState = iota
	StateForm
	StateConfirmDelete
)

type formKind int

const (
	formAdd formKind = iota
	formRename
	formReflect
	formRating
	formJournal
	formHistoryJournal
)

// FormModel holds the values bound to the open huh form
type FormModel struct {
	Text string
	Good bool
}

type (
	stateMsg     struct{ state models.AppState }
	loadedMsg    struct{ state models.AppState }
	savedMsg     struct{ err error }
	errMsg       struct{ err error }
	completedMsg struct {
		encouragement string
		ok            bool
	}
	dayEndedMsg struct{ ok bool }
)

type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	adapter *storage.Adapter
	ctrl    *planner.Controller
	watcher *scheduler.DayWatcher
	updates chan models.AppState

	state    SessionState
	keys     KeyMap
	help     help.Model
	form     *huh.Form
	formKind formKind
	formData *FormModel
	target   string // task id or history date the form applies to

	tasks        tasklist.Model
	day          dayview.Model
	historyTasks tasklist.Model
	historyIndex int

	// pending counts saves in flight; subscription deliveries are dropped
	// until they land and a reload follows if any were.
	pending  int
	dropped  bool
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(adapter *storage.Adapter, gen generator.Generator, n notifier.Notifier, state models.AppState) Model {
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan models.AppState, 1)
	m := Model{
		ctx:          ctx,
		cancel:       cancel,
		adapter:      adapter,
		ctrl:         planner.New(state, gen, planner.WithNotifier(n)),
		updates:      updates,
		state:        StateBrowse,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		tasks:        tasklist.New("No tasks yet. Press a to add one.", 0, 0),
		day:          dayview.New(0, 0),
		historyTasks: tasklist.New("No tasks recorded for this day.", 0, 0),
	}
	m.watcher = scheduler.New(adapter, func(s models.AppState) { deliver(updates, s) })
	m.refresh()
	return m
}

// Controller exposes the planner driving the model
func (m Model) Controller() *planner.Controller {
	return m.ctrl
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.subscribe(), m.startWatcher(), waitForState(m.updates))
}

func (m Model) subscribe() tea.Cmd {
	ctx, adapter, updates := m.ctx, m.adapter, m.updates
	return func() tea.Msg {
		if _, err := adapter.Subscribe(ctx, func(s models.AppState) { deliver(updates, s) }); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) startWatcher() tea.Cmd {
	ctx, w := m.ctx, m.watcher
	return func() tea.Msg {
		if err := w.Start(ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// deliver replaces any undelivered state with s.
func deliver(ch chan models.AppState, s models.AppState) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForState(ch <-chan models.AppState) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{<-ch}
	}
}

func (m *Model) save() tea.Cmd {
	m.pending++
	ctx, adapter, state := m.ctx, m.adapter, m.ctrl.State()
	return func() tea.Msg {
		return savedMsg{adapter.Save(ctx, state)}
	}
}

func (m Model) reload() tea.Cmd {
	ctx, adapter := m.ctx, m.adapter
	return func() tea.Msg {
		s, err := adapter.Load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{s}
	}
}

func (m *Model) shutdown() {
	if err := m.watcher.Stop(); err != nil {
		logger.Warn("Failed to stop day watcher", "error", err)
	}
	m.cancel()
}

// refresh rebuilds the components from the controller state.
func (m *Model) refresh() {
	s := m.ctrl.State()
	if s.CurrentView == models.ViewPlanning {
		ranked := make([]planner.RankedTask, len(s.CurrentDay.Inbox))
		for i, t := range s.CurrentDay.Inbox {
			ranked[i] = planner.RankedTask{Task: t, Rank: i + 1}
		}
		m.tasks.SetTasks(ranked, true)
	} else {
		m.tasks.SetTasks(m.ctrl.Ranked(), false)
	}

	records := s.History
	m.historyIndex = max(min(m.historyIndex, len(records)-1), 0)
	if len(records) == 0 {
		m.day.SetDay(nil)
		m.historyTasks.SetTasks(nil, false)
		return
	}
	day := records[m.historyIndex]
	m.day.SetDay(&day)
	m.historyTasks.SetTasks(planner.Rank(day.Tasks), false)
}

// historyDay returns the record shown in the history view
func (m Model) historyDay() (models.DayRecord, bool) {
	records := m.ctrl.State().History
	if m.historyIndex < 0 || m.historyIndex >= len(records) {
		return models.DayRecord{}, false
	}
	return records[m.historyIndex], true
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.ctrl.View() {
	case models.ViewPlanning:
		keys = append(keys, m.keys.Add, m.keys.Start)
	case models.ViewWorking:
		keys = append(keys, m.keys.Complete, m.keys.EndDay)
	case models.ViewJournal:
		keys = append(keys, m.keys.Journal, m.keys.Save, m.keys.Back)
	case models.ViewHistory:
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.History}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.ctrl.View() {
	case models.ViewPlanning:
		actions = []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.MoveUp, m.keys.MoveDown, m.keys.Start}
	case models.ViewWorking:
		actions = []key.Binding{m.keys.Complete, m.keys.Adjust, m.keys.EndDay}
	case models.ViewJournal:
		actions = []key.Binding{m.keys.Journal, m.keys.Save, m.keys.Back}
	case models.ViewHistory:
		navigation = append(navigation, m.keys.PrevDay, m.keys.NextDay)
		actions = []key.Binding{m.keys.Toggle, m.keys.Journal, m.keys.Delete, m.keys.Back}
	}
	return [][]key.Binding{global, navigation, actions}
}
