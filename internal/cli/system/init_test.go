package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)

	ctx, err := cli.NewContext(context.Background(), store, "UTC")
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	ctx.Now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	out := &bytes.Buffer{}
	ctx.Out = out

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, dbPath, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if !strings.Contains(out.String(), "Initialized habitual storage at: "+dbPath) {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)
	cmd := &InitCmd{}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if err := ctx.Store.AddHabit(ctx.Ctx, models.Habit{Name: "Read", Type: models.HabitBoolean}); err != nil {
		t.Fatalf("AddHabit: %v", err)
	}

	out.Reset()
	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database at: "+dbPath) {
		t.Errorf("unexpected output: %q", out.String())
	}

	habits, err := ctx.Store.FetchHabits(ctx.Ctx)
	if err != nil {
		t.Fatalf("FetchHabits after reset: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty store after --force, got %d habits", len(habits))
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath, _ := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "same") {
		t.Errorf("expected same-path error, got %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database should survive: %v", err)
	}
}

func seedJSONSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	src := storage.NewJSONStore(path)
	if err := src.Init(context.Background()); err != nil {
		t.Fatalf("source init: %v", err)
	}
	habit := models.Habit{
		Name: "Pages",
		Type: models.HabitCounter,
		Goal: &models.Goal{Target: 5000, Period: models.PeriodYear},
		Completions: []models.CompletionRecord{
			{Date: "2024-03-14", Amount: models.Count(20)},
			{Date: "2024-03-15", Amount: models.Count(35), Note: "long chapter"},
		},
	}
	if err := src.AddHabit(context.Background(), habit); err != nil {
		t.Fatalf("source AddHabit: %v", err)
	}
	return path
}

func TestInitCmd_ImportsFromSource(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	source := seedJSONSource(t)

	if err := (&InitCmd{Source: source}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 1 habits with 2 completion records") {
		t.Errorf("unexpected output: %q", out.String())
	}

	h, err := ctx.Store.GetHabitByName(ctx.Ctx, "Pages")
	if err != nil {
		t.Fatalf("imported habit missing: %v", err)
	}
	if len(h.Completions) != 2 || h.Goal == nil || h.Goal.Target != 5000 {
		t.Errorf("imported habit = %+v", h)
	}
	if rec, ok := h.Completion("2024-03-15"); !ok || rec.Note != "long chapter" || rec.Amount != models.Count(35) {
		t.Errorf("record = %+v, ok %v", rec, ok)
	}

	// a second import skips habits that already exist
	out.Reset()
	if err := (&InitCmd{Source: source}).Run(ctx); err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if !strings.Contains(out.String(), "skipped 1") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestInitCmd_MissingSource(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)

	err := (&InitCmd{Source: filepath.Join(t.TempDir(), "missing.db")}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "import failed") {
		t.Errorf("expected import error, got %v", err)
	}
}
