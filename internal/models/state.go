package models

import (
	"fmt"
	"strings"
)

// View is the phase the planner is in
type View string

const (
	ViewPlanning View = "planning"
	ViewWorking  View = "working"
	ViewJournal  View = "journal"
	ViewHistory  View = "history"
)

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewPlanning, ViewWorking, ViewJournal, ViewHistory:
		return v, nil
	}
	return "", fmt.Errorf("invalid view: %q", s)
}

// AppState is the whole persisted document.
type AppState struct {
	SchemaVersion    int         `json:"schemaVersion"`
	CurrentDay       DayRecord   `json:"currentDay"`
	History          []DayRecord `json:"history"` // most recent first, unique by date
	CurrentView      View        `json:"currentView"`
	LastRolloverDate string      `json:"lastRolloverDate,omitempty"`
}

// NewState returns a fresh document whose current day is date
func NewState(date string) AppState {
	return AppState{
		SchemaVersion: CurrentSchemaVersion,
		CurrentDay:    NewDay(date),
		History:       []DayRecord{},
		CurrentView:   ViewPlanning,
	}
}

// Clone returns a deep copy
func (s AppState) Clone() AppState {
	out := s
	out.CurrentDay = s.CurrentDay.Clone()
	out.History = make([]DayRecord, len(s.History))
	for i, d := range s.History {
		out.History[i] = d.Clone()
	}
	return out
}

// HistoryIndex returns the index of the record for date, or -1
func (s AppState) HistoryIndex(date string) int {
	for i, d := range s.History {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// Records returns the current day followed by history, the order exports use
func (s AppState) Records() []DayRecord {
	out := make([]DayRecord, 0, len(s.History)+1)
	out = append(out, s.CurrentDay)
	for _, d := range s.History {
		if d.Date == s.CurrentDay.Date {
			continue
		}
		out = append(out, d)
	}
	return out
}

// UpsertHistory stores day under its date, replacing an existing entry in place
// or prepending a new one.
func UpsertHistory(history []DayRecord, day DayRecord) []DayRecord {
	for i, d := range history {
		if d.Date == day.Date {
			out := make([]DayRecord, len(history))
			copy(out, history)
			out[i] = day
			return out
		}
	}
	out := make([]DayRecord, 0, len(history)+1)
	out = append(out, day)
	return append(out, history...)
}
