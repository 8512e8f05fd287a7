package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/threethings/internal/models"
)

func sampleRecords() []models.DayRecord {
	good := true
	day := models.NewDay("2024-05-01")
	day.DayRating = &good
	day.JournalEntry = "A steady day"
	done := models.NewTask("a", "write report")
	done.Size = models.TaskSizeBig
	done.Complete(`said "finally"`, "Nice, one done", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	day.Tasks = []models.Task{done, models.NewTask("b", "read, then nap")}

	legacy := models.NewDay("2024-04-30")
	legacy.DayReflection = "old summary"
	legacy.Tasks = []models.Task{models.NewTask("c", "old task")}
	return []models.DayRecord{day, legacy}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleRecords()); err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## 2024-05-01\n",
		"**Day rating**: Good enough",
		"**Summary**: A steady day",
		"### Task 1: write report (big)",
		"- Status: Done",
		"- Encouragement: Nice, one done",
		"### Task 2: read, then nap (small)",
		"- Reflection: Not written",
		"**Day rating**: Not rated",
		"**Summary**: old summary",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown() missing %q\n%s", want, out)
		}
	}
	if got := strings.Count(out, "---\n"); got != 2 {
		t.Errorf("separator count = %d, want 2", got)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("CSV() failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"2024-05-01", "write report", "big", "Done", `said "finally"`, "Nice, one done", "true", "A steady day"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
	if rows[2][1] != "read, then nap" || rows[2][3] != "Pending" {
		t.Errorf("row = %v", rows[2])
	}
	if rows[3][6] != "" || rows[3][7] != "old summary" {
		t.Errorf("unrated legacy row = %v", rows[3])
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("pdf"), nil); err == nil {
		t.Error("Write(pdf) error = nil")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(FormatCSV, "2024-05-01"); got != "threethings_export_2024-05-01.csv" {
		t.Errorf("FileName(csv) = %q", got)
	}
	if got := FileName(FormatMarkdown, "2024-05-01"); got != "threethings_export_2024-05-01.md" {
		t.Errorf("FileName(markdown) = %q", got)
	}
}
