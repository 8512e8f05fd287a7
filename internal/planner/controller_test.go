package planner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/rollover"
)

// stubGenerator returns fixed text and can block until released.
type stubGenerator struct {
	release chan struct{}
	started chan struct{}
}

func (g *stubGenerator) wait() {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
}

func (g *stubGenerator) Encouragement(_ context.Context, title string, _ models.TaskSize, _ string) string {
	g.wait()
	return "nice work on " + title
}

func (g *stubGenerator) JournalEntry(_ context.Context, tasks []models.Task, rating bool) string {
	g.wait()
	return fmt.Sprintf("%d tasks, good=%v", len(tasks), rating)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Notify(text string) error {
	n.mu.Lock()
	n.sent = append(n.sent, text)
	n.mu.Unlock()
	return nil
}

func seqIDs(prefix string) rollover.IDFunc {
	n := 0
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var fixedNow = time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)

func newController(t *testing.T, state models.AppState, gen *stubGenerator, n *recordingNotifier) *Controller {
	t.Helper()
	if gen == nil {
		gen = &stubGenerator{}
	}
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDFunc(seqIDs("t")),
	}
	if n != nil {
		opts = append(opts, WithNotifier(n))
	}
	return New(state, gen, opts...)
}

func planned(t *testing.T, titles ...string) *Controller {
	t.Helper()
	c := newController(t, models.NewState("2024-05-01"), nil, nil)
	for _, title := range titles {
		if !c.AddTask(title) {
			t.Fatalf("AddTask(%q) = false", title)
		}
	}
	return c
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestAddTask(t *testing.T) {
	c := planned(t, "write report")
	if c.AddTask("   ") {
		t.Error("AddTask(blank) = true, want no-op")
	}
	inbox := c.State().CurrentDay.Inbox
	if len(inbox) != 1 || inbox[0].Title != "write report" || inbox[0].Size != models.TaskSizeSmall {
		t.Errorf("Inbox = %+v", inbox)
	}

	c.StartDay()
	if c.AddTask("late idea") {
		t.Error("AddTask() while working = true, want no-op")
	}
}

func TestRemoveAndRename(t *testing.T) {
	c := planned(t, "a", "b")
	if !c.RenameTask("t-1", "  alpha ") {
		t.Fatal("RenameTask() = false")
	}
	if c.RenameTask("t-1", "") || c.RenameTask("missing", "x") {
		t.Error("RenameTask() accepted invalid input")
	}
	if !c.RemoveTask("t-2") || c.RemoveTask("t-2") {
		t.Error("RemoveTask() should succeed once")
	}
	inbox := c.State().CurrentDay.Inbox
	if len(inbox) != 1 || inbox[0].Title != "alpha" {
		t.Errorf("Inbox = %+v", inbox)
	}

	// Renames during work reach both lists
	c.StartDay()
	if !c.RenameTask("t-1", "omega") {
		t.Fatal("RenameTask() while working = false")
	}
	day := c.State().CurrentDay
	if day.Tasks[0].Title != "omega" || day.Inbox[0].Title != "omega" {
		t.Errorf("rename did not reach both lists: %+v", day)
	}
	if c.RemoveTask("t-1") {
		t.Error("RemoveTask() while working = true, want no-op")
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
		changed  bool
	}{
		{name: "down", from: 0, to: 2, want: []string{"t-2", "t-3", "t-1"}, changed: true},
		{name: "up", from: 2, to: 0, want: []string{"t-3", "t-1", "t-2"}, changed: true},
		{name: "same", from: 1, to: 1, want: []string{"t-1", "t-2", "t-3"}},
		{name: "out of range", from: 0, to: 3, want: []string{"t-1", "t-2", "t-3"}},
		{name: "negative", from: -1, to: 0, want: []string{"t-1", "t-2", "t-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := planned(t, "a", "b", "c")
			if got := c.Reorder(tt.from, tt.to); got != tt.changed {
				t.Errorf("Reorder(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.changed)
			}
			got := ids(c.State().CurrentDay.Inbox)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Inbox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartDayAssignsSizes(t *testing.T) {
	c := planned(t, "a", "b", "c", "d", "e")
	if !c.StartDay() {
		t.Fatal("StartDay() = false")
	}
	state := c.State()
	if state.CurrentView != models.ViewWorking || !state.CurrentDay.IsStarted {
		t.Errorf("state after start = view %q started %v", state.CurrentView, state.CurrentDay.IsStarted)
	}
	want := []models.TaskSize{models.TaskSizeBig, models.TaskSizeBig, models.TaskSizeBig, models.TaskSizeSmall, models.TaskSizeSmall}
	for i, task := range state.CurrentDay.Tasks {
		if task.Size != want[i] {
			t.Errorf("Tasks[%d].Size = %q, want %q", i, task.Size, want[i])
		}
	}
	if c.StartDay() {
		t.Error("StartDay() twice = true")
	}
}

func TestStartDayEmptyInbox(t *testing.T) {
	c := planned(t)
	if c.StartDay() {
		t.Error("StartDay() with nothing planned = true")
	}
}

func TestStartDayRecoversFromHistory(t *testing.T) {
	state := models.NewState("2024-05-02")
	prev := models.NewDay("2024-05-01")
	prev.Tasks = []models.Task{models.NewTask("old-1", "read 10 pages")}
	state.History = []models.DayRecord{prev}

	c := newController(t, state, nil, nil)
	if !c.StartDay() {
		t.Fatal("StartDay() = false")
	}
	got := c.State()
	if len(got.CurrentDay.Tasks) != 1 || got.CurrentDay.Tasks[0].RolledFrom != "old-1" {
		t.Errorf("Tasks = %+v", got.CurrentDay.Tasks)
	}
	if !got.History[0].RolledOver {
		t.Error("history entry not marked rolled over")
	}
}

func TestAdjustPlanKeepsTasks(t *testing.T) {
	c := planned(t, "a")
	c.StartDay()
	if !c.AdjustPlan() {
		t.Fatal("AdjustPlan() = false")
	}
	state := c.State()
	if state.CurrentView != models.ViewPlanning || len(state.CurrentDay.Tasks) != 1 {
		t.Errorf("state = %+v", state)
	}
	if c.AdjustPlan() {
		t.Error("AdjustPlan() from planning = true")
	}
}

func TestComplete(t *testing.T) {
	c := planned(t, "a", "b")
	c.StartDay()

	if _, ok := c.Complete(context.Background(), "t-1", "   "); ok {
		t.Error("Complete() with blank reflection = true")
	}
	if _, ok := c.Complete(context.Background(), "missing", "done"); ok {
		t.Error("Complete() unknown id = true")
	}

	enc, ok := c.Complete(context.Background(), "t-1", " went well ")
	if !ok || enc != "nice work on a" {
		t.Fatalf("Complete() = %q, %v", enc, ok)
	}
	day := c.State().CurrentDay
	for _, list := range [][]models.Task{day.Tasks, day.Inbox} {
		task := list[0]
		if !task.IsDone || task.Reflection != "went well" || task.EncouragementText() != enc || task.DoneAt == nil || !task.DoneAt.Equal(fixedNow) {
			t.Errorf("completed task = %+v", task)
		}
	}
	if _, ok := c.Complete(context.Background(), "t-1", "again"); ok {
		t.Error("Complete() twice = true")
	}
}

func TestCompleteIsBusyGated(t *testing.T) {
	gen := &stubGenerator{release: make(chan struct{}), started: make(chan struct{})}
	c := newController(t, models.NewState("2024-05-01"), gen, nil)
	c.AddTask("a")
	c.AddTask("b")
	c.StartDay()

	done := make(chan bool)
	go func() {
		_, ok := c.Complete(context.Background(), "t-1", "first")
		done <- ok
	}()
	<-gen.started

	if !c.Busy() {
		t.Error("Busy() = false while generating")
	}
	if _, ok := c.Complete(context.Background(), "t-2", "second"); ok {
		t.Error("Complete() while busy = true")
	}
	close(gen.release)
	if !<-done {
		t.Error("first Complete() = false")
	}
	if c.Busy() {
		t.Error("Busy() = true after generation finished")
	}
}

func TestCanEndDay(t *testing.T) {
	tests := []struct {
		name string
		done []string
		want bool
	}{
		{name: "nothing done", want: false},
		{name: "some big done", done: []string{"t-1", "t-2"}, want: false},
		{name: "all big done", done: []string{"t-1", "t-2", "t-3"}, want: true},
		{name: "small only", done: []string{"t-4"}, want: false},
		{name: "all done", done: []string{"t-1", "t-2", "t-3", "t-4"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := planned(t, "a", "b", "c", "d")
			c.StartDay()
			for _, id := range tt.done {
				if _, ok := c.Complete(context.Background(), id, "ok"); !ok {
					t.Fatalf("Complete(%s) = false", id)
				}
			}
			if got := c.CanEndDay(); got != tt.want {
				t.Errorf("CanEndDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmitDayEnd(t *testing.T) {
	c := planned(t, "a")
	c.StartDay()
	if c.SubmitDayEnd(context.Background(), true) {
		t.Fatal("SubmitDayEnd() before the day can end = true")
	}
	c.Complete(context.Background(), "t-1", "ok")

	if !c.SubmitDayEnd(context.Background(), false) {
		t.Fatal("SubmitDayEnd() = false")
	}
	state := c.State()
	day := state.CurrentDay
	if state.CurrentView != models.ViewJournal || day.DayRating == nil || *day.DayRating {
		t.Errorf("state = view %q rating %v", state.CurrentView, day.DayRating)
	}
	if day.JournalEntry != "1 tasks, good=false" || day.JournalCreatedAt == nil {
		t.Errorf("journal = %q at %v", day.JournalEntry, day.JournalCreatedAt)
	}

	if !c.BackToWorking() || c.View() != models.ViewWorking {
		t.Error("BackToWorking() did not return to working")
	}
}

func TestSaveJournalWithoutRollover(t *testing.T) {
	c := planned(t, "a")
	c.StartDay()
	c.Complete(context.Background(), "t-1", "ok")
	c.SubmitDayEnd(context.Background(), true)

	n, ok := c.SaveJournal("my own words")
	if !ok || n != 0 {
		t.Fatalf("SaveJournal() = %d, %v", n, ok)
	}
	state := c.State()
	if state.CurrentView != models.ViewHistory {
		t.Errorf("CurrentView = %q, want history", state.CurrentView)
	}
	if len(state.History) != 1 || state.History[0].JournalEntry != "my own words" {
		t.Errorf("History = %+v", state.History)
	}
	if state.CurrentDay.Date != "2024-05-01" || state.CurrentDay.JournalEntry != "my own words" {
		t.Errorf("CurrentDay = %+v", state.CurrentDay)
	}
	if !c.ReturnFromHistory() || c.View() != models.ViewWorking {
		t.Error("ReturnFromHistory() should go back to the started day")
	}
}

// Plan four tasks, finish the big three, close the day well: the fourth
// lands in tomorrow's inbox with a new id and the rollover is announced.
func TestDayLifecycleRollsOverUnfinishedSmallTask(t *testing.T) {
	n := &recordingNotifier{}
	c := newController(t, models.NewState("2024-05-01"), nil, n)
	for _, title := range []string{"write report", "exercise", "call mom", "read 10 pages"} {
		c.AddTask(title)
	}
	c.StartDay()
	for _, id := range []string{"t-1", "t-2", "t-3"} {
		if _, ok := c.Complete(context.Background(), id, "done"); !ok {
			t.Fatalf("Complete(%s) = false", id)
		}
	}
	if !c.SubmitDayEnd(context.Background(), true) {
		t.Fatal("SubmitDayEnd() = false")
	}
	carried, ok := c.SaveJournal("")
	if !ok || carried != 1 {
		t.Fatalf("SaveJournal() = %d, %v", carried, ok)
	}

	state := c.State()
	if state.CurrentDay.Date != "2024-05-02" || state.LastRolloverDate != "2024-05-02" {
		t.Errorf("new day = %q, lastRolloverDate = %q", state.CurrentDay.Date, state.LastRolloverDate)
	}
	if state.CurrentView != models.ViewPlanning {
		t.Errorf("CurrentView = %q, want planning", state.CurrentView)
	}
	inbox := state.CurrentDay.Inbox
	if len(inbox) != 1 || inbox[0].Title != "read 10 pages" || inbox[0].ID == "t-4" || inbox[0].RolledFrom != "t-4" {
		t.Errorf("Inbox = %+v", inbox)
	}
	archived := state.History[0]
	if archived.Date != "2024-05-01" || !archived.RolledOver || archived.JournalEntry != "4 tasks, good=true" {
		t.Errorf("archived = %+v", archived)
	}
	if len(n.sent) != 1 || n.sent[0] != "1 unfinished task moved to 2024-05-02" {
		t.Errorf("notifications = %v", n.sent)
	}
}

func TestHistoryNavigation(t *testing.T) {
	c := planned(t, "a")
	if !c.ViewHistory() || c.ViewHistory() {
		t.Error("ViewHistory() should change the view once")
	}
	if !c.ReturnFromHistory() || c.View() != models.ViewPlanning {
		t.Error("ReturnFromHistory() should go back to planning before the day starts")
	}
}
