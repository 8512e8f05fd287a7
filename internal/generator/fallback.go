package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/julianstephens/threethings/internal/models"
)

var bigEncouragements = []string{
	"You did it. Today's you is great.",
	"That big one is done. Impressive.",
	"Finishing what matters feels good.",
	"You're becoming who you want to be.",
	"A solid, steady step forward.",
}

var smallEncouragements = []string{
	"One done is one done.",
	"Small things count. Every step does.",
	"Another one finished. That's how it adds up.",
	"These little pieces are your path.",
	"Steady action, quietly powerful.",
}

// Fallback is the local generator used when the remote one is unavailable.
type Fallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallback returns a fallback picking canned lines with rnd, or a
// time-seeded source when rnd is nil.
func NewFallback(rnd *rand.Rand) *Fallback {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Fallback{rnd: rnd}
}

func (f *Fallback) Encouragement(_ context.Context, _ string, size models.TaskSize, _ string) string {
	list := smallEncouragements
	if size == models.TaskSizeBig {
		list = bigEncouragements
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return list[f.rnd.Intn(len(list))]
}

func (f *Fallback) JournalEntry(_ context.Context, tasks []models.Task, rating bool) string {
	done := 0
	for _, t := range tasks {
		if t.IsDone {
			done++
		}
	}
	if rating {
		return fmt.Sprintf("You finished %d of %d tasks and took your goals seriously today. Whatever the result, that honesty and effort deserve credit. Rest well and carry on tomorrow.", done, len(tasks))
	}
	return fmt.Sprintf("Today didn't go smoothly, yet you still finished %d of %d tasks. Facing how the day really went is a strength too. Let yourself rest and start fresh tomorrow.", done, len(tasks))
}
