package models

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/threethings/internal/constants"
)

// CurrentSchemaVersion is stamped on every document this build writes
const CurrentSchemaVersion = constants.SchemaVersion

// Documents written before schema versions existed carry no schemaVersion,
// may lack inbox/isStarted on day records and may lack currentView.
type rawDay struct {
	DayRecord
	Inbox     *[]Task `json:"inbox"`
	IsStarted *bool   `json:"isStarted"`
}

type rawState struct {
	SchemaVersion    int      `json:"schemaVersion"`
	CurrentDay       *rawDay  `json:"currentDay"`
	History          []rawDay `json:"history"`
	CurrentView      string   `json:"currentView"`
	LastRolloverDate string   `json:"lastRolloverDate"`
}

// DecodeState parses a persisted document and migrates it to CurrentSchemaVersion.
func DecodeState(data []byte) (AppState, error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return AppState{}, fmt.Errorf("failed to parse state document: %w", err)
	}
	if raw.SchemaVersion > CurrentSchemaVersion {
		return AppState{}, fmt.Errorf("state schema version (%d) is newer than supported version (%d) - please upgrade the application", raw.SchemaVersion, CurrentSchemaVersion)
	}
	if raw.CurrentDay == nil {
		return AppState{}, fmt.Errorf("state document has no current day")
	}

	state := AppState{
		SchemaVersion:    CurrentSchemaVersion,
		CurrentDay:       migrateDay(*raw.CurrentDay),
		History:          make([]DayRecord, 0, len(raw.History)),
		CurrentView:      ViewPlanning,
		LastRolloverDate: raw.LastRolloverDate,
	}
	for _, d := range raw.History {
		state.History = append(state.History, migrateDay(d))
	}
	if raw.CurrentView != "" {
		if v, err := ParseView(raw.CurrentView); err == nil {
			state.CurrentView = v
		}
	}
	return state, nil
}

func migrateDay(raw rawDay) DayRecord {
	day := raw.DayRecord
	if day.Tasks == nil {
		day.Tasks = []Task{}
	}
	if raw.Inbox == nil {
		// Legacy records only had the committed list, and a started day always had three.
		day.Inbox = []Task{}
		day.IsStarted = len(day.Tasks) == BigTaskCount
	} else {
		day.Inbox = *raw.Inbox
		if day.Inbox == nil {
			day.Inbox = []Task{}
		}
		if raw.IsStarted != nil {
			day.IsStarted = *raw.IsStarted
		}
	}
	for i := range day.Tasks {
		if day.Tasks[i].Size == "" {
			day.Tasks[i].Size = TaskSizeSmall
		}
	}
	for i := range day.Inbox {
		if day.Inbox[i].Size == "" {
			day.Inbox[i].Size = TaskSizeSmall
		}
	}
	return day
}

// EncodeState serializes a document, stamping the current schema version.
func EncodeState(state AppState) ([]byte, error) {
	state.SchemaVersion = CurrentSchemaVersion
	if state.History == nil {
		state.History = []DayRecord{}
	}
	if state.CurrentDay.Tasks == nil {
		state.CurrentDay.Tasks = []Task{}
	}
	if state.CurrentDay.Inbox == nil {
		state.CurrentDay.Inbox = []Task{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return data, nil
}

// BigTaskCount is the number of leading inbox entries promoted as big tasks
const BigTaskCount = constants.BigTaskCount
