package tasks

import (
	"errors"
	"strings"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/planner"
)

type JournalShowCmd struct{}

func (c *JournalShowCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	day := state.CurrentDay
	if day.Summary() == "" {
		return errors.New("no journal entry yet; end the day with 'threethings end --good' or '--bad'")
	}
	ctx.Printf("%s (%s)\n\n%s\n", day.Date, cli.RatingText(day.DayRating), day.Summary())
	return nil
}

// JournalSaveCmd commits the day. Without text the generated entry is kept.
type JournalSaveCmd struct {
	Text []string `arg:"" optional:"" help:"Journal text replacing the generated entry."`
}

func (c *JournalSaveCmd) Run(ctx *cli.Context) error {
	var carried int
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		n, ok := p.SaveJournal(strings.Join(c.Text, " "))
		carried = n
		return ok
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "save the journal")
	}
	ctx.Println("Journal saved.")
	if carried > 0 {
		ctx.Println(notifier.RolloverMessage(carried, state.CurrentDay.Date))
	}
	return nil
}

type JournalBackCmd struct{}

func (c *JournalBackCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.BackToWorking()
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "go back to work")
	}
	ctx.PrintDay(state)
	return nil
}
