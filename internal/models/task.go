package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskSize marks a committed task as one of the day's top priorities or a secondary one
type TaskSize string

const (
	TaskSizeBig   TaskSize = "big"
	TaskSizeSmall TaskSize = "small"
)

// ParseTaskSize parses a size name
func ParseTaskSize(s string) (TaskSize, error) {
	switch TaskSize(strings.ToLower(strings.TrimSpace(s))) {
	case TaskSizeBig:
		return TaskSizeBig, nil
	case TaskSizeSmall:
		return TaskSizeSmall, nil
	}
	return "", fmt.Errorf("invalid task size: %q", s)
}

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Size          TaskSize   `json:"size"`
	IsDone        bool       `json:"isDone"`
	Reflection    string     `json:"reflection"`
	DoneAt        *time.Time `json:"doneAt,omitempty"`
	Encouragement *string    `json:"encouragement,omitempty"`
	RolledFrom    string     `json:"rolledFrom,omitempty"`
}

// NewTask returns an undone small task. The title is trimmed; callers reject empty titles.
func NewTask(id, title string) Task {
	return Task{
		ID:    id,
		Title: strings.TrimSpace(title),
		Size:  TaskSizeSmall,
	}
}

// Complete writes every completion field in one step.
func (t *Task) Complete(reflection, encouragement string, at time.Time) {
	t.IsDone = true
	t.Reflection = reflection
	t.Encouragement = &encouragement
	doneAt := at
	t.DoneAt = &doneAt
}

// RolloverCopy returns a fresh, undone copy of t with a new identity.
func (t Task) RolloverCopy(newID string) Task {
	return Task{
		ID:         newID,
		Title:      t.Title,
		Size:       TaskSizeSmall,
		RolledFrom: t.ID,
	}
}

// EncouragementText returns the stored encouragement or "" when absent
func (t Task) EncouragementText() string {
	if t.Encouragement == nil {
		return ""
	}
	return *t.Encouragement
}

// IsBig reports whether the task is one of the day's big commitments
func (t Task) IsBig() bool {
	return t.Size == TaskSizeBig
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.DoneAt != nil {
			at := *t.DoneAt
			t.DoneAt = &at
		}
		if t.Encouragement != nil {
			enc := *t.Encouragement
			t.Encouragement = &enc
		}
		out[i] = t
	}
	return out
}
