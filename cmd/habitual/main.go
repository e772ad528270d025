package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database target: SQLite path, *.json file, firestore://<project>, a PostgreSQL connection string without password, or 'postgresql' to use the keyring/environment." env:"HABITUAL_CONFIG" default:"~/.config/habitual/habitual.db"`
	Timezone string `help:"IANA timezone that decides what 'today' is." env:"HABITUAL_TIMEZONE" default:"Local"`
	Debug    bool   `help:"Mirror debug logs to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize habitual storage."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and habit tracking."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	// .env may carry Firestore or PostgreSQL credentials; it is optional
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, goals and projections"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	if err := run(ctx); err != nil {
		apperrors.Fatal(err)
	}
}

func run(kctx *kong.Context) error {
	store, err := storage.Open(CLI.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx, err := cli.NewContext(sigCtx, store, CLI.Timezone)
	if err != nil {
		return err
	}

	logger.Debug("Running command", "command", kctx.Command(), "backend", storage.Detect(CLI.Config))
	return kctx.Run(appCtx)
}

// configDir is where logs go: next to a file database, otherwise the default
// config directory.
func configDir(target string) string {
	path := constants.DefaultConfigPath
	switch storage.Detect(target) {
	case storage.BackendSQLite, storage.BackendJSON:
		path = target
	}
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return "."
	}
	return filepath.Dir(expanded)
}
