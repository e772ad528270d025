package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitual/internal/cli"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting an existing database file before initialization."`
	Source string `help:"Store to import habits from (path, connection string or firestore://project)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized habitual storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Importing habits from: %s\n", c.Source)
		if err := c.importHabits(ctx); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
	}
	return nil
}

// reset removes the database file behind a file-backed store. Server-backed
// stores are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	switch storage.Detect(dbPath) {
	case storage.BackendSQLite, storage.BackendJSON:
	default:
		return fmt.Errorf("--force only applies to file databases, not %s", dbPath)
	}

	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		logger.Info("Deleted existing database", "path", dbPath)
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) importHabits(ctx *cli.Context) error {
	source, err := storage.Open(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer source.Close()

	habits, err := source.FetchHabits(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read habits from source: %w", err)
	}

	imported, skipped, records := 0, 0, 0
	for _, h := range habits {
		err := ctx.Store.AddHabit(ctx.Ctx, h)
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.Warn("Skipping habit already present in destination", "name", h.Name)
			ctx.Printf("  Skipped %q (already exists)\n", h.Name)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to add habit %q: %w", h.Name, err)
		}
		imported++
		records += len(h.Completions)
	}

	ctx.Printf("Imported %d habits with %d completion records", imported, records)
	if skipped > 0 {
		ctx.Printf(", skipped %d", skipped)
	}
	ctx.Println()
	return nil
}
