package exports

import (
	"fmt"
	"os"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/export"
)

type ExportCmd struct {
	Format string `arg:"" enum:"markdown,csv" help:"Export format (markdown or csv)."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout. Use '.' for the default file name."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	format := export.Format(c.Format)
	records := state.Records()

	if c.Output == "" {
		return export.Write(ctx.Stdout(), format, records)
	}

	path := c.Output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = path + string(os.PathSeparator) + export.FileName(format, ctx.Adapter.Today())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(f, format, records); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	ctx.Printf("Exported %d day(s) to %s\n", len(records), path)
	return nil
}
