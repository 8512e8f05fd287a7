package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing store before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Provision(); err != nil {
		return err
	}
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	ctx.Printf("Initialized threethings storage at: %s\n", ctx.Store.Location())
	ctx.Printf("Today is %s. Add tasks with 'threethings add <title>'.\n", state.CurrentDay.Date)
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	var target string
	switch ctx.Backend.Kind {
	case config.BackendSQLite:
		target = ctx.Backend.Location
	case config.BackendLocal:
		target = filepath.Join(ctx.Backend.Location, "data")
	case config.BackendMemory:
		return nil
	default:
		return fmt.Errorf("--force is only supported for file-based stores")
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	// Close first to release file locks
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing store: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete existing store: %w", err)
	}
	ctx.Printf("Deleted existing store at: %s\n", target)
	return nil
}
