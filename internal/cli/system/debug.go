package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/models"
)

type DebugCmd struct {
	Path DebugPathCmd `cmd:"" help:"Show where the state is stored."`
	Dump DebugDumpCmd `cmd:"" help:"Dump the state document as JSON."`
}

type DebugPathCmd struct{}

func (cmd *DebugPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]any{
		"kind":     ctx.Backend.Kind,
		"location": ctx.Store.Location(),
		"dir":      ctx.Backend.Dir(),
	})
}

type DebugDumpCmd struct {
	Date string `arg:"" optional:"" help:"Dump only the day with this date (YYYY-MM-DD)."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	if cmd.Date == "" {
		return printJSON(ctx, state)
	}
	for _, day := range append([]models.DayRecord{state.CurrentDay}, state.History...) {
		if day.Date == cmd.Date {
			return printJSON(ctx, day)
		}
	}
	return fmt.Errorf("no day found for date: %s", cmd.Date)
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
