package system

import (
	"context"
	"time"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/scheduler"
)

// WatchCmd follows the state and prints every change, including the
// rollover performed when the local date changes.
type WatchCmd struct {
	Interval time.Duration `help:"How often to check for a new day." default:"1m"`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	return c.run(ctx.Ctx(), ctx)
}

func (c *WatchCmd) run(runCtx context.Context, ctx *cli.Context) error {
	changes := make(chan models.AppState, 8)
	deliver := func(s models.AppState) {
		select {
		case changes <- s:
		case <-runCtx.Done():
		}
	}

	unsubscribe, err := ctx.Adapter.Subscribe(runCtx, deliver)
	if err != nil {
		return err
	}
	defer unsubscribe()

	// Rollovers written by the day watcher come back through the subscription.
	watcher := scheduler.New(ctx.Adapter, nil, scheduler.WithInterval(c.Interval))
	if err := watcher.Start(runCtx); err != nil {
		return err
	}
	defer watcher.Stop()

	ctx.Printf("Watching %s (Ctrl+C to stop)\n", ctx.Store.Location())
	for {
		select {
		case <-runCtx.Done():
			return nil
		case s := <-changes:
			done, total := s.CurrentDay.Stats().Overall.Done, len(s.CurrentDay.Tasks)
			ctx.Printf("[%s] %s  view=%s  inbox=%d  done=%d/%d\n",
				time.Now().Format("15:04:05"), s.CurrentDay.Date, s.CurrentView, len(s.CurrentDay.Inbox), done, total)
		}
	}
}
