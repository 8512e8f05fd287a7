package tasks

import (
	"errors"
	"strings"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/planner"
)

type StartCmd struct{}

func (c *StartCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.StartDay()
	})
	if err != nil {
		return err
	}
	if !changed {
		if state.CurrentView == models.ViewPlanning {
			return errors.New("nothing to start; add tasks first")
		}
		return cli.NotAllowed(state, "start the day")
	}
	ctx.PrintDay(state)
	return nil
}

type AdjustCmd struct{}

func (c *AdjustCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.AdjustPlan()
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "adjust the plan")
	}
	ctx.PrintDay(state)
	return nil
}

type DoneCmd struct {
	ID         string   `arg:"" help:"Task ID or unique prefix."`
	Reflection []string `arg:"" help:"How it went."`
}

func (c *DoneCmd) Validate() error {
	if strings.TrimSpace(strings.Join(c.Reflection, " ")) == "" {
		return errors.New("reflection cannot be empty")
	}
	return nil
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	reflection := strings.Join(c.Reflection, " ")
	var encouragement string
	var canEnd bool
	state, changed, err := ctx.UpdateTask(ctx.Ctx(), c.ID, func(p *planner.Controller, id string) bool {
		enc, ok := p.Complete(ctx.Ctx(), id, reflection)
		encouragement, canEnd = enc, p.CanEndDay()
		return ok
	})
	if err != nil {
		return err
	}
	if !changed {
		if state.CurrentView == models.ViewWorking {
			return errors.New("task is not one of today's committed tasks or is already done")
		}
		return cli.NotAllowed(state, "complete tasks")
	}
	ctx.Printf("✓ %s\n", encouragement)
	if canEnd {
		ctx.Println("You can close the day with 'threethings end --good' or 'threethings end --bad'.")
	}
	return nil
}

type EndCmd struct {
	Good bool `xor:"rating" required:"" help:"The day went well enough."`
	Bad  bool `xor:"rating" required:"" help:"The day did not go well."`
}

func (c *EndCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.SubmitDayEnd(ctx.Ctx(), c.Good)
	})
	if err != nil {
		return err
	}
	if !changed {
		if state.CurrentView == models.ViewWorking {
			return errors.New("finish all big tasks before ending the day")
		}
		return cli.NotAllowed(state, "end the day")
	}
	ctx.Printf("Journal for %s:\n\n%s\n\n", state.CurrentDay.Date, state.CurrentDay.JournalEntry)
	ctx.Println("Save it with 'threethings journal save [your own words]' or go back with 'threethings journal back'.")
	return nil
}
