package models

import "time"

// DayRecord is one calendar day's inbox, committed tasks and end-of-day journal.
type DayRecord struct {
	Date             string     `json:"date"` // YYYY-MM-DD format, local timezone
	Tasks            []Task     `json:"tasks"`
	Inbox            []Task     `json:"inbox"`
	IsStarted        bool       `json:"isStarted"`
	DayRating        *bool      `json:"dayRating,omitempty"`
	JournalEntry     string     `json:"journalEntry,omitempty"`
	JournalCreatedAt *time.Time `json:"journalCreatedAt,omitempty"`
	DayReflection    string     `json:"dayReflection,omitempty"` // legacy summary field
	RolledOver       bool       `json:"rolledOver,omitempty"`
	// Discarded marks a current day whose history record was deleted; it is
	// not archived again when the date changes.
	Discarded bool `json:"discarded,omitempty"`
}

// SizeStats counts completed and total tasks of one size
type SizeStats struct {
	Done  int
	Total int
}

// Rate returns the completion percentage, 0 for an empty group
func (s SizeStats) Rate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Done * 100 / s.Total
}

// DayStats summarizes completion of a day's committed tasks
type DayStats struct {
	Big     SizeStats
	Small   SizeStats
	Overall SizeStats
}

func NewDay(date string) DayRecord {
	return DayRecord{
		Date:  date,
		Tasks: []Task{},
		Inbox: []Task{},
	}
}

// Clone returns a deep copy
func (d DayRecord) Clone() DayRecord {
	out := d
	out.Tasks = cloneTasks(d.Tasks)
	out.Inbox = cloneTasks(d.Inbox)
	if d.DayRating != nil {
		r := *d.DayRating
		out.DayRating = &r
	}
	if d.JournalCreatedAt != nil {
		at := *d.JournalCreatedAt
		out.JournalCreatedAt = &at
	}
	return out
}

// FindTask returns the first copy of id, searching committed tasks before the inbox.
func (d DayRecord) FindTask(id string) (Task, bool) {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range d.Inbox {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// UpdateTask applies fn to every copy of id in both lists and reports whether one was found.
func (d *DayRecord) UpdateTask(id string, fn func(*Task)) bool {
	found := false
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			fn(&d.Tasks[i])
			found = true
		}
	}
	for i := range d.Inbox {
		if d.Inbox[i].ID == id {
			fn(&d.Inbox[i])
			found = true
		}
	}
	return found
}

// Summary returns the journal text, falling back to the legacy reflection
func (d DayRecord) Summary() string {
	if d.JournalEntry != "" {
		return d.JournalEntry
	}
	return d.DayReflection
}

// Stats computes completion counts over the committed tasks
func (d DayRecord) Stats() DayStats {
	var s DayStats
	for _, t := range d.Tasks {
		group := &s.Small
		if t.IsBig() {
			group = &s.Big
		}
		group.Total++
		s.Overall.Total++
		if t.IsDone {
			group.Done++
			s.Overall.Done++
		}
	}
	return s
}
