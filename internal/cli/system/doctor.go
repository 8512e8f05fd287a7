package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/threethings/internal/backup"
	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/config"
	"github.com/julianstephens/threethings/internal/migration"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/storage"
	"github.com/julianstephens/threethings/internal/storage/sqlite"
	"github.com/julianstephens/threethings/internal/validation"
	"github.com/julianstephens/threethings/migrations"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(ctx *cli.Context) error
	warning bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Store reachable", run: checkStoreReachable},
		{name: "Schema version", run: checkSchemaVersion},
		{name: "State document", run: checkStateDocument},
		{name: "Backups present", run: checkBackupsPresent, warning: true},
		{name: "Clock/timezone", run: checkClock},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	_, err := ctx.Store.Read(ctx.Ctx())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read state: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok || s.DB() == nil {
		return nil
	}
	runner := migration.NewRunner(s.DB(), migrations.SQLite())
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkStateDocument(ctx *cli.Context) error {
	doc, err := ctx.Store.Read(ctx.Ctx())
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	state, err := models.DecodeState(doc.Data)
	if err != nil {
		return fmt.Errorf("state document does not decode: %w", err)
	}
	result := validation.New().ValidateState(state)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found; run 'threethings validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Backend.Kind != config.BackendSQLite {
		return nil
	}
	backups, err := backup.NewManager(ctx.Backend.Location).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'threethings backup create'")
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if today := ctx.Adapter.Today(); today != now.Format("2006-01-02") {
		ctx.Printf("   Note: the configured timezone puts today at %s\n", today)
	}
	return nil
}
