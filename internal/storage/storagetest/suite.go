// Package storagetest is a conformance suite run against every storage.Provider backend.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// Factory returns an initialized, empty provider. Cleanup is registered on t.
type Factory func(t *testing.T) storage.Provider

// Run exercises the Provider contract against fresh stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AddAndFetch", func(t *testing.T) { testAddAndFetch(t, newStore(t)) })
	t.Run("DuplicateName", func(t *testing.T) { testDuplicateName(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("Toggle", func(t *testing.T) { testToggle(t, newStore(t)) })
	t.Run("ToggleConcurrent", func(t *testing.T) { testToggleConcurrent(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
}

func mustAdd(t *testing.T, p storage.Provider, h models.Habit) models.Habit {
	t.Helper()
	ctx := context.Background()
	if err := p.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit(%s) failed: %v", h.Name, err)
	}
	got, err := p.GetHabitByName(ctx, h.Name)
	if err != nil {
		t.Fatalf("GetHabitByName(%s) failed: %v", h.Name, err)
	}
	return got
}

func testAddAndFetch(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mustAdd(t, p, models.Habit{ID: "h1", Name: "Read", Type: models.HabitBoolean, CreatedAt: created})
	mustAdd(t, p, models.Habit{
		ID:        "h2",
		Name:      "Write",
		Type:      models.HabitCounter,
		CreatedAt: created.Add(time.Hour),
		Goal:      &models.Goal{Target: 1000, Period: models.PeriodYear},
	})

	habits, err := p.FetchHabits(ctx)
	if err != nil {
		t.Fatalf("FetchHabits() failed: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}
	if habits[0].Name != "Read" || habits[1].Name != "Write" {
		t.Errorf("unexpected order: %s, %s", habits[0].Name, habits[1].Name)
	}
	if len(habits[0].Completions) != 0 {
		t.Errorf("new habit should have no completions, got %d", len(habits[0].Completions))
	}
	if habits[1].Goal == nil || *habits[1].Goal != (models.Goal{Target: 1000, Period: models.PeriodYear}) {
		t.Errorf("goal not round-tripped: %+v", habits[1].Goal)
	}
	if !habits[1].CreatedAt.Equal(created.Add(time.Hour)) {
		t.Errorf("CreatedAt = %v", habits[1].CreatedAt)
	}

	got, err := p.GetHabit(ctx, "h2")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Type != models.HabitCounter {
		t.Errorf("Type = %s, want counter", got.Type)
	}
}

func testDuplicateName(t *testing.T, p storage.Provider) {
	mustAdd(t, p, models.Habit{ID: "a", Name: "Run", Type: models.HabitBoolean})
	err := p.AddHabit(context.Background(), models.Habit{ID: "b", Name: "Run", Type: models.HabitBoolean})
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		t.Errorf("duplicate AddHabit error = %v, want ErrAlreadyExists", err)
	}
}

func testNotFound(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	if _, err := p.GetHabit(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetHabit error = %v, want ErrNotFound", err)
	}
	if _, err := p.GetHabitByName(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetHabitByName error = %v, want ErrNotFound", err)
	}
	if err := p.DeleteHabit(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("DeleteHabit error = %v, want ErrNotFound", err)
	}
	if _, err := p.ToggleCompletion(ctx, "missing", models.CompletionRecord{Date: "2024-01-01"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ToggleCompletion error = %v, want ErrNotFound", err)
	}
}

func testToggle(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	h := mustAdd(t, p, models.Habit{ID: "w", Name: "Write", Type: models.HabitCounter})

	rec := models.CompletionRecord{Date: "2024-03-15", Amount: models.WordCount(50), Note: "draft"}
	added, err := p.ToggleCompletion(ctx, h.ID, rec)
	if err != nil || !added {
		t.Fatalf("first toggle = %v, %v; want added", added, err)
	}
	if _, err := p.ToggleCompletion(ctx, h.ID, models.CompletionRecord{Date: "2024-03-01", Amount: models.WordCount(100)}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	got, err := p.GetHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if len(got.Completions) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(got.Completions))
	}
	first := got.Completions[0]
	if first.Date != "2024-03-15" || first.Amount != models.WordCount(50) || first.Note != "draft" {
		t.Errorf("completion not round-tripped: %+v", first)
	}

	added, err = p.ToggleCompletion(ctx, h.ID, models.CompletionRecord{Date: "2024-03-15"})
	if err != nil || added {
		t.Fatalf("second toggle = %v, %v; want removed", added, err)
	}
	got, _ = p.GetHabit(ctx, h.ID)
	if len(got.Completions) != 1 || got.Completions[0].Date != "2024-03-01" {
		t.Errorf("after removal: %+v", got.Completions)
	}

	if _, err := p.ToggleCompletion(ctx, h.ID, models.CompletionRecord{Date: "15/03/2024"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("malformed date error = %v, want ErrInvalidInput", err)
	}
}

func testToggleConcurrent(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	h := mustAdd(t, p, models.Habit{ID: "c", Name: "Stretch", Type: models.HabitBoolean})

	days := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"}
	var wg sync.WaitGroup
	errs := make(chan error, len(days))
	for _, d := range days {
		wg.Add(1)
		go func(day string) {
			defer wg.Done()
			if _, err := p.ToggleCompletion(ctx, h.ID, models.CompletionRecord{Date: day}); err != nil {
				errs <- err
			}
		}(d)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent toggle failed: %v", err)
	}

	got, err := p.GetHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if len(got.Completions) != len(days) {
		t.Errorf("expected %d completions, got %d", len(days), len(got.Completions))
	}
}

func testUpdate(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	h := mustAdd(t, p, models.Habit{ID: "u", Name: "Gym", Type: models.HabitBoolean})

	h.Name = "Lift"
	h.Goal = &models.Goal{Target: 3, Period: models.PeriodWeek}
	h.Type = models.HabitCounter
	if err := p.UpdateHabit(ctx, h); err != nil {
		t.Fatalf("UpdateHabit() failed: %v", err)
	}

	got, err := p.GetHabit(ctx, "u")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Name != "Lift" || got.Goal == nil || got.Goal.Target != 3 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Type != models.HabitBoolean {
		t.Errorf("type changed to %s, it must be immutable", got.Type)
	}

	got.Goal = nil
	if err := p.UpdateHabit(ctx, got); err != nil {
		t.Fatalf("clearing goal failed: %v", err)
	}
	cleared, _ := p.GetHabit(ctx, "u")
	if cleared.Goal != nil {
		t.Errorf("goal not cleared: %+v", cleared.Goal)
	}

	if err := p.UpdateHabit(ctx, models.Habit{ID: "nope", Name: "x", Type: models.HabitBoolean}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("update missing habit error = %v, want ErrNotFound", err)
	}
}

func testDeleteCascades(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	h := mustAdd(t, p, models.Habit{ID: "d", Name: "Meditate", Type: models.HabitBoolean})
	for _, d := range []string{"2024-01-01", "2024-01-02"} {
		if _, err := p.ToggleCompletion(ctx, h.ID, models.CompletionRecord{Date: d}); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}

	if err := p.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHabit() failed: %v", err)
	}
	if _, err := p.GetHabit(ctx, h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetHabit after delete error = %v", err)
	}

	// re-adding with the same id must start from an empty history
	again := mustAdd(t, p, models.Habit{ID: "d", Name: "Meditate", Type: models.HabitBoolean})
	if len(again.Completions) != 0 {
		t.Errorf("completions survived delete: %+v", again.Completions)
	}
}
