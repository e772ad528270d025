package storage

import (
	"context"

	"github.com/julianstephens/habitual/internal/models"
)

// Provider is a habit store backend. Implementations report connection
// failures as errors.ErrStoreUnavailable and missing habits as errors.ErrNotFound.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	FetchHabits(ctx context.Context) ([]models.Habit, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitByName(ctx context.Context, name string) (models.Habit, error)
	AddHabit(ctx context.Context, habit models.Habit) error
	// UpdateHabit persists name and goal changes. ID, type and creation time are immutable.
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// DeleteHabit removes the habit together with all of its completion records.
	DeleteHabit(ctx context.Context, id string) error

	// ToggleCompletion removes the record for rec.Date if one exists, otherwise
	// stores rec. added reports which happened.
	ToggleCompletion(ctx context.Context, habitID string, rec models.CompletionRecord) (added bool, err error)

	// Utils
	GetConfigPath() string
}
