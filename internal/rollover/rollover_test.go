package rollover

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/threethings/internal/models"
)

func sequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func task(id, title string, size models.TaskSize, done bool) models.Task {
	t := models.Task{ID: id, Title: title, Size: size}
	if done {
		t.Complete("ok", "nice", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	}
	return t
}

func startedDay(date string, tasks ...models.Task) models.DayRecord {
	d := models.NewDay(date)
	d.Tasks = append(d.Tasks, tasks...)
	d.Inbox = append(d.Inbox, tasks...)
	d.IsStarted = true
	return d
}

func TestReconcileSameDateIsNoop(t *testing.T) {
	day := startedDay("2024-05-01", task("a", "A", models.TaskSizeSmall, false))
	history := []models.DayRecord{models.NewDay("2024-04-30")}

	gotDay, gotHistory, changed := Reconcile(day, history, "2024-05-01", sequentialIDs("n"))
	if changed {
		t.Fatal("Reconcile() changed = true, want false for same date")
	}
	if !reflect.DeepEqual(gotDay, day) || !reflect.DeepEqual(gotHistory, history) {
		t.Error("Reconcile() returned modified inputs for same date")
	}
}

func TestReconcileFutureDateIsNoop(t *testing.T) {
	day := models.NewDay("2024-05-02")
	_, _, changed := Reconcile(day, nil, "2024-05-01", sequentialIDs("n"))
	if changed {
		t.Error("Reconcile() changed = true for a day dated after today")
	}
}

func TestReconcileArchivesAndRollsOver(t *testing.T) {
	day := startedDay("2024-05-01",
		task("b1", "write report", models.TaskSizeBig, true),
		task("b2", "call mom", models.TaskSizeBig, false),
		task("s1", "read 10 pages", models.TaskSizeSmall, false),
		task("s2", "stretch", models.TaskSizeSmall, true),
	)
	history := []models.DayRecord{models.NewDay("2024-04-30")}

	next, newHistory, changed := Reconcile(day, history, "2024-05-02", sequentialIDs("n"))
	if !changed {
		t.Fatal("Reconcile() changed = false, want true")
	}

	if next.Date != "2024-05-02" || next.IsStarted || len(next.Tasks) != 0 {
		t.Errorf("new day = %+v, want fresh unstarted day for 2024-05-02", next)
	}
	if len(next.Inbox) != 1 {
		t.Fatalf("len(next.Inbox) = %d, want 1 (only the unfinished small task)", len(next.Inbox))
	}
	carried := next.Inbox[0]
	if carried.Title != "read 10 pages" || carried.ID == "s1" || carried.IsDone || carried.Size != models.TaskSizeSmall {
		t.Errorf("carried task = %+v, want fresh undone copy of s1", carried)
	}
	if carried.DoneAt != nil || carried.Encouragement != nil || carried.Reflection != "" {
		t.Errorf("carried task has completion fields: %+v", carried)
	}

	if len(newHistory) != 2 || newHistory[0].Date != "2024-05-01" {
		t.Fatalf("history = %v, want archived day at front", newHistory)
	}
	if !newHistory[0].RolledOver {
		t.Error("archived day not marked rolled over")
	}
	if len(newHistory[0].Tasks) != 4 {
		t.Errorf("archived day lost tasks: %d", len(newHistory[0].Tasks))
	}
	if len(history) != 1 {
		t.Error("Reconcile() mutated the input history")
	}
}

func TestReconcileArchivesBlankDay(t *testing.T) {
	next, history, changed := Reconcile(models.NewDay("2024-05-01"), nil, "2024-05-03", sequentialIDs("n"))
	if !changed {
		t.Fatal("Reconcile() changed = false, want true")
	}
	if len(history) != 1 || history[0].Date != "2024-05-01" {
		t.Errorf("blank day not archived: %v", history)
	}
	if next.Inbox == nil || len(next.Inbox) != 0 {
		t.Errorf("next.Inbox = %v, want empty non-nil list", next.Inbox)
	}
}

func TestReconcileDeduplicatesAcrossLists(t *testing.T) {
	shared := task("s1", "water plants", models.TaskSizeSmall, false)
	day := models.NewDay("2024-05-01")
	day.Tasks = []models.Task{shared}
	day.Inbox = []models.Task{shared, task("s2", "inbox only", models.TaskSizeSmall, false)}

	next, _, _ := Reconcile(day, nil, "2024-05-02", sequentialIDs("n"))
	if len(next.Inbox) != 2 {
		t.Fatalf("len(next.Inbox) = %d, want 2", len(next.Inbox))
	}
	if next.Inbox[0].Title != "water plants" || next.Inbox[1].Title != "inbox only" {
		t.Errorf("rolled titles = %q, %q", next.Inbox[0].Title, next.Inbox[1].Title)
	}
}

func TestReconcileNeverRollsBigOrDone(t *testing.T) {
	day := startedDay("2024-05-01",
		task("b1", "big undone", models.TaskSizeBig, false),
		task("s1", "small done", models.TaskSizeSmall, true),
	)
	next, _, _ := Reconcile(day, nil, "2024-05-02", sequentialIDs("n"))
	if len(next.Inbox) != 0 {
		t.Errorf("rolled %v, want nothing", next.Inbox)
	}
}

func TestReconcileReplacesHistoryEntryWithSameDate(t *testing.T) {
	day := startedDay("2024-05-01", task("b1", "A", models.TaskSizeBig, true))
	saved := day.Clone()
	saved.JournalEntry = "already archived"
	history := []models.DayRecord{saved, models.NewDay("2024-04-30")}

	_, newHistory, _ := Reconcile(day, history, "2024-05-02", sequentialIDs("n"))
	if len(newHistory) != 2 {
		t.Fatalf("len(history) = %d, want 2 (no duplicate date)", len(newHistory))
	}
}

func TestReconcileDoesNotArchiveDiscardedDay(t *testing.T) {
	day := startedDay("2024-05-01", task("s1", "A", models.TaskSizeSmall, false))
	day.Discarded = true
	history := []models.DayRecord{models.NewDay("2024-04-30")}

	next, newHistory, changed := Reconcile(day, history, "2024-05-02", sequentialIDs("n"))
	if !changed || next.Date != "2024-05-02" {
		t.Fatalf("Reconcile() = %v, %v, want a new day", next.Date, changed)
	}
	if len(newHistory) != 1 || newHistory[0].Date != "2024-04-30" {
		t.Errorf("history = %v, want only 2024-04-30", newHistory)
	}
	if len(next.Inbox) != 1 {
		t.Errorf("len(next.Inbox) = %d, want unfinished task carried", len(next.Inbox))
	}
}

func TestReconcileSkipsDayAlreadyRolled(t *testing.T) {
	day := startedDay("2024-05-01", task("s1", "A", models.TaskSizeSmall, false))
	day.RolledOver = true
	next, _, changed := Reconcile(day, nil, "2024-05-02", sequentialIDs("n"))
	if !changed {
		t.Fatal("Reconcile() changed = false, want true")
	}
	if len(next.Inbox) != 0 {
		t.Errorf("rolled %d tasks from a day already rolled over", len(next.Inbox))
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	day := startedDay("2024-05-01", task("s1", "A", models.TaskSizeSmall, false))
	ids := sequentialIDs("n")

	once, history, _ := Reconcile(day, nil, "2024-05-02", ids)
	twice, history2, changed := Reconcile(once, history, "2024-05-02", ids)
	if changed {
		t.Error("second Reconcile() changed = true")
	}
	if !reflect.DeepEqual(once, twice) || !reflect.DeepEqual(history, history2) {
		t.Error("second Reconcile() altered the result")
	}
}

func TestFallback(t *testing.T) {
	t.Run("copies unfinished small tasks once", func(t *testing.T) {
		history := []models.DayRecord{startedDay("2024-05-01",
			task("b1", "big", models.TaskSizeBig, false),
			task("s1", "small", models.TaskSizeSmall, false),
		)}

		tasks, newHistory, ok := Fallback(history, sequentialIDs("f"))
		if !ok || len(tasks) != 1 || tasks[0].Title != "small" || tasks[0].ID == "s1" {
			t.Fatalf("Fallback() = %v, %v", tasks, ok)
		}
		if !newHistory[0].RolledOver {
			t.Error("Fallback() did not mark the entry rolled over")
		}
		if history[0].RolledOver {
			t.Error("Fallback() mutated the input history")
		}

		if again, _, ok := Fallback(newHistory, sequentialIDs("f")); ok || len(again) != 0 {
			t.Errorf("second Fallback() = %v, want nothing", again)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		if _, _, ok := Fallback(nil, sequentialIDs("f")); ok {
			t.Error("Fallback(nil) ok = true")
		}
	})
}
