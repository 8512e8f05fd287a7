package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}

	// Back up after a successful load so a broken store is not copied over good backups
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Adapter, ctx.Generator, ctx.Notifier, state),
		tea.WithAltScreen(),
		tea.WithContext(ctx.Ctx()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with an error: %w", err)
	}
	return nil
}
