package models

import "testing"

func TestUpsertHistory(t *testing.T) {
	history := []DayRecord{NewDay("2024-05-02"), NewDay("2024-05-01")}

	t.Run("prepends new date", func(t *testing.T) {
		out := UpsertHistory(history, NewDay("2024-05-03"))
		if len(out) != 3 || out[0].Date != "2024-05-03" {
			t.Errorf("UpsertHistory() = %v", out)
		}
	})

	t.Run("replaces existing date in place", func(t *testing.T) {
		day := NewDay("2024-05-01")
		day.JournalEntry = "updated"
		out := UpsertHistory(history, day)
		if len(out) != 2 || out[1].JournalEntry != "updated" {
			t.Errorf("UpsertHistory() = %v", out)
		}
		if history[1].JournalEntry != "" {
			t.Error("UpsertHistory() mutated its input")
		}
	})
}

func TestDayRecordUpdateTaskHitsBothLists(t *testing.T) {
	day := NewDay("2024-05-01")
	day.Tasks = []Task{NewTask("a", "A")}
	day.Inbox = []Task{NewTask("a", "A"), NewTask("b", "B")}

	if !day.UpdateTask("a", func(t *Task) { t.Title = "renamed" }) {
		t.Fatal("UpdateTask() = false, want true")
	}
	if day.Tasks[0].Title != "renamed" || day.Inbox[0].Title != "renamed" {
		t.Errorf("rename not applied to both lists: %+v %+v", day.Tasks[0], day.Inbox[0])
	}
	if day.UpdateTask("missing", func(t *Task) {}) {
		t.Error("UpdateTask(missing) = true")
	}
}

func TestDayStats(t *testing.T) {
	day := NewDay("2024-05-01")
	big := NewTask("b", "B")
	big.Size = TaskSizeBig
	big.IsDone = true
	day.Tasks = []Task{big, NewTask("s", "S")}

	stats := day.Stats()
	if stats.Big.Rate() != 100 || stats.Small.Rate() != 0 || stats.Overall.Rate() != 50 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCloneIsDeep(t *testing.T) {
	state := NewState("2024-05-01")
	task := NewTask("a", "A")
	enc := "keep going"
	task.Encouragement = &enc
	state.CurrentDay.Tasks = []Task{task}

	clone := state.Clone()
	*clone.CurrentDay.Tasks[0].Encouragement = "changed"
	clone.CurrentDay.Tasks[0].Title = "changed"

	if state.CurrentDay.Tasks[0].EncouragementText() != "keep going" || state.CurrentDay.Tasks[0].Title != "A" {
		t.Error("Clone() shares memory with the original")
	}
}
