package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/cli/backups"
	"github.com/julianstephens/threethings/internal/cli/exports"
	"github.com/julianstephens/threethings/internal/cli/history"
	"github.com/julianstephens/threethings/internal/cli/system"
	"github.com/julianstephens/threethings/internal/cli/tasks"
	"github.com/julianstephens/threethings/internal/config"
	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/errors"
	"github.com/julianstephens/threethings/internal/generator"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/notifier"
	"github.com/julianstephens/threethings/internal/storage"
	"github.com/julianstephens/threethings/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite file, local:<dir>, :memory: or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use the keyring, environment variables or .pgpass instead." env:"THREETHINGS_CONFIG"`
	Timezone string `help:"IANA timezone used to decide the current day." env:"THREETHINGS_TIMEZONE"`
	Debug    bool   `help:"Log debug output to stderr." env:"THREETHINGS_DEBUG"`

	GeneratorKey   string `help:"API key for the text generator." env:"THREETHINGS_GENERATOR_KEY"`
	GeneratorURL   string `help:"Base URL of an OpenAI-compatible endpoint." env:"THREETHINGS_GENERATOR_URL"`
	GeneratorModel string `help:"Model used for generated text." env:"THREETHINGS_GENERATOR_MODEL"`
	DBConnection   string `hidden:"" env:"THREETHINGS_DB_CONNECTION"`

	Init       system.InitCmd     `cmd:"" help:"Initialize storage."`
	Migrate    system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Status     system.StatusCmd   `cmd:"" help:"Show the current day."`
	Tui        system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Watch      system.WatchCmd    `cmd:"" help:"Print the state whenever it changes."`
	Doctor     system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate   system.ValidateCmd `cmd:"" help:"Check the state document for conflicts."`
	DebugTools system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`

	Add    tasks.AddCmd    `cmd:"" help:"Add a task to the inbox."`
	Rm     tasks.RemoveCmd `cmd:"" help:"Remove a task."`
	Rename tasks.RenameCmd `cmd:"" help:"Rename a task."`
	Move   tasks.MoveCmd   `cmd:"" help:"Reorder the inbox."`
	Start  tasks.StartCmd  `cmd:"" help:"Start the day with the planned tasks."`
	Adjust tasks.AdjustCmd `cmd:"" help:"Go back to planning."`
	Done   tasks.DoneCmd   `cmd:"" help:"Complete a task with a reflection."`
	End    tasks.EndCmd    `cmd:"" help:"Rate the day and write the journal."`

	Journal struct {
		Show tasks.JournalShowCmd `cmd:"" help:"Show the generated journal entry." default:"1"`
		Save tasks.JournalSaveCmd `cmd:"" help:"Save the journal and archive the day."`
		Back tasks.JournalBackCmd `cmd:"" help:"Return to working without saving."`
	} `cmd:"" help:"Review and save the day's journal."`

	History struct {
		List    history.ListCmd    `cmd:"" help:"List recorded days." default:"1"`
		Show    history.ShowCmd    `cmd:"" help:"Show one recorded day."`
		Toggle  history.ToggleCmd  `cmd:"" help:"Toggle a task's done flag in a recorded day."`
		Journal history.JournalCmd `cmd:"" help:"Replace a recorded day's journal."`
		Delete  history.DeleteCmd  `cmd:"" help:"Delete a recorded day."`
	} `cmd:"" help:"Browse and edit past days."`

	Export exports.ExportCmd `cmd:"" help:"Export history as Markdown or CSV."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show which secrets are stored." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

// needsStore reports whether the selected command reads the state document.
func needsStore(command string) bool {
	return !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring")
}

func main() {
	if err := config.LoadEnv(config.DefaultDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Plan three things, do them, reflect, and carry the rest forward."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	backend, err := config.ResolveBackend(CLI.Config, CLI.DBConnection)
	errors.Fatal(err)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: backend.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	errors.Fatal(err)

	store, err := cli.NewStore(backend)
	errors.Fatal(err)

	gen := generator.NewClient(config.ResolveGenerator(config.Generator{
		APIKey:  CLI.GeneratorKey,
		BaseURL: CLI.GeneratorURL,
		Model:   CLI.GeneratorModel,
	}), generator.NewFallback(nil))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Base:      runCtx,
		Backend:   backend,
		Store:     store,
		Adapter:   storage.NewAdapter(store, storage.WithToday(utils.TodayFunc(time.Now, loc))),
		Generator: gen,
		Notifier:  notifier.Multi{notifier.NewTray(), notifier.LogNotifier{}},
	}

	if needsStore(ctx.Command()) {
		err = appCtx.Open()
	}
	if err == nil {
		err = ctx.Run(appCtx)
	}
	if cerr := appCtx.Adapter.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	errors.Fatal(err)
}
