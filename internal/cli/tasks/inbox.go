package tasks

import (
	"errors"
	"strings"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/planner"
)

type AddCmd struct {
	Title []string `arg:"" help:"Task title."`
}

func (c *AddCmd) Validate() error {
	if strings.TrimSpace(strings.Join(c.Title, " ")) == "" {
		return errors.New("task title cannot be empty")
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	title := strings.Join(c.Title, " ")
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.AddTask(title)
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "add tasks")
	}
	inbox := state.CurrentDay.Inbox
	added := inbox[len(inbox)-1]
	ctx.Printf("Added: %s (ID: %s)\n", added.Title, cli.ShortID(added.ID))
	return nil
}

type RemoveCmd struct {
	ID string `arg:"" help:"Task ID or unique prefix."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.UpdateTask(ctx.Ctx(), c.ID, func(p *planner.Controller, id string) bool {
		return p.RemoveTask(id)
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "remove tasks")
	}
	ctx.Println("Removed task")
	return nil
}

type RenameCmd struct {
	ID    string   `arg:"" help:"Task ID or unique prefix."`
	Title []string `arg:"" help:"New title."`
}

func (c *RenameCmd) Validate() error {
	if strings.TrimSpace(strings.Join(c.Title, " ")) == "" {
		return errors.New("task title cannot be empty")
	}
	return nil
}

func (c *RenameCmd) Run(ctx *cli.Context) error {
	title := strings.Join(c.Title, " ")
	state, changed, err := ctx.UpdateTask(ctx.Ctx(), c.ID, func(p *planner.Controller, id string) bool {
		return p.RenameTask(id, title)
	})
	if err != nil {
		return err
	}
	if !changed {
		return cli.NotAllowed(state, "rename tasks")
	}
	ctx.Printf("Renamed to: %s\n", strings.TrimSpace(title))
	return nil
}

// MoveCmd reorders the inbox. Positions are 1-based as listed by status.
type MoveCmd struct {
	From int `arg:"" help:"Current position."`
	To   int `arg:"" help:"New position."`
}

func (c *MoveCmd) Run(ctx *cli.Context) error {
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.Reorder(c.From-1, c.To-1)
	})
	if err != nil {
		return err
	}
	if !changed {
		if n := len(state.CurrentDay.Inbox); c.From < 1 || c.To < 1 || c.From > n || c.To > n {
			return errors.New("position out of range")
		}
		if c.From == c.To {
			return nil
		}
		return cli.NotAllowed(state, "reorder tasks")
	}
	ctx.PrintDay(state)
	return nil
}
