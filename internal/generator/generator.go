// Package generator produces the encouragement shown when a task is completed
// and the end-of-day journal text. Generation never fails from the caller's
// point of view: any problem falls back to local canned text.
package generator

import (
	"context"

	"github.com/julianstephens/threethings/internal/models"
)

// Generator is the text generation collaborator
type Generator interface {
	// Encouragement returns a short supportive line for a completed task.
	Encouragement(ctx context.Context, title string, size models.TaskSize, reflection string) string
	// JournalEntry returns a short narrative closing the day.
	JournalEntry(ctx context.Context, tasks []models.Task, rating bool) string
}
