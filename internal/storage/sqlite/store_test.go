package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/storage/storagetest"
)

var _ storage.Provider = (*sqlite.Store)(nil)

func setupTestSQLiteStore(t *testing.T) (*sqlite.Store, func()) {
	dbPath := filepath.Join(t.TempDir(), "nested", "habitual.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	return store, func() { store.Close() }
}

func TestProviderContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		store, cleanup := setupTestSQLiteStore(t)
		t.Cleanup(cleanup)
		return store
	})
}

func TestLoadBeforeInit(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "habitual init") {
		t.Errorf("Load() error = %v, want hint to run init", err)
	}
}

func TestUnloadedStoreIsUnavailable(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "x.db"))
	if _, err := store.FetchHabits(context.Background()); err == nil {
		t.Error("FetchHabits on an unloaded store should fail")
	}
}

func TestInitCreatesDirectoryAndReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "a", "b", "habitual.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := store.AddHabit(ctx, models.Habit{Name: "Read", Type: models.HabitBoolean}); err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	reopened := sqlite.NewStore(dbPath)
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer reopened.Close()

	h, err := reopened.GetHabitByName(ctx, "Read")
	if err != nil {
		t.Fatalf("GetHabitByName() failed: %v", err)
	}
	if h.ID == "" || h.CreatedAt.IsZero() {
		t.Errorf("AddHabit should assign id and created_at: %+v", h)
	}

	// Init on an existing database only applies pending migrations
	if err := reopened.Init(ctx); err != nil {
		t.Errorf("second Init() failed: %v", err)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestSQLiteStore(t)
	path := store.GetConfigPath()
	cleanup()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}
	db.Close()

	reopened := sqlite.NewStore(path)
	defer reopened.Close()
	if err := reopened.Load(ctx); !errors.Is(err, migration.ErrSchemaTooNew) {
		t.Errorf("Load() error = %v, want ErrSchemaTooNew", err)
	}
}

func TestAddHabitWithHistory(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestSQLiteStore(t)
	defer cleanup()

	err := store.AddHabit(ctx, models.Habit{
		ID:   "imported",
		Name: "Pushups",
		Type: models.HabitCounter,
		Completions: []models.CompletionRecord{
			{Date: "2024-03-01", Amount: models.Count(20)},
			{Date: "2024-03-02", Amount: models.Count(25)},
		},
	})
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}

	h, err := store.GetHabit(ctx, "imported")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if len(h.Completions) != 2 || h.Completions[1].Amount != models.Count(25) {
		t.Errorf("imported completions = %+v", h.Completions)
	}
}

func TestFetchHabitsOrdersByCreationTime(t *testing.T) {
	store, cleanup := setupTestSQLiteStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	habits := []models.Habit{
		{Name: "Alpha", Type: models.HabitBoolean, CreatedAt: base.Add(150 * time.Millisecond)},
		{Name: "Beta", Type: models.HabitBoolean, CreatedAt: base.Add(100 * time.Millisecond)},
		// 23:59:59 UTC on the previous day
		{Name: "Gamma", Type: models.HabitBoolean, CreatedAt: time.Date(2024, 1, 1, 1, 59, 59, 0, plus2)},
		{Name: "Delta", Type: models.HabitBoolean, CreatedAt: base},
	}
	for _, h := range habits {
		if err := store.AddHabit(ctx, h); err != nil {
			t.Fatalf("AddHabit(%s) failed: %v", h.Name, err)
		}
	}

	got, err := store.FetchHabits(ctx)
	if err != nil {
		t.Fatalf("FetchHabits() failed: %v", err)
	}
	want := []string{"Gamma", "Delta", "Beta", "Alpha"}
	if len(got) != len(want) {
		t.Fatalf("expected %d habits, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("habit %d = %s, want %s", i, got[i].Name, name)
		}
	}
	if !got[0].CreatedAt.Equal(habits[2].CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, habits[2].CreatedAt)
	}
}
