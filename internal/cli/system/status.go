package system

import (
	"github.com/julianstephens/threethings/internal/cli"
)

type StatusCmd struct {
	Verbose bool `short:"v" help:"Show where the state is stored."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	if c.Verbose {
		ctx.Printf("Store: %s (revision %d)\n", ctx.Store.Location(), ctx.Adapter.Revision())
		if state.LastRolloverDate != "" {
			ctx.Printf("Last rollover: %s\n", state.LastRolloverDate)
		}
		ctx.Println()
	}
	ctx.PrintDay(state)
	return nil
}
