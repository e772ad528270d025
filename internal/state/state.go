// Package state holds the application's habit snapshot. One Store is created at
// startup and passed to the CLI and TUI; it is the only copy of the habit list
// the process keeps.
package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// Listener is called with a fresh copy of the habit list after every change.
// It runs while the mutation is still in progress and must not call back into
// the Store's mutating methods.
type Listener func([]models.Habit)

type Store struct {
	provider storage.Provider

	// writeMu serializes provider writes with the refresh that follows them
	writeMu sync.Mutex

	mu        sync.RWMutex
	habits    []models.Habit
	loaded    bool
	listeners map[int]Listener
	nextID    int
}

func New(provider storage.Provider) *Store {
	return &Store{
		provider:  provider,
		listeners: make(map[int]Listener),
	}
}

// Load replaces the snapshot with the provider's habits and notifies subscribers.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	habits, err := s.provider.FetchHabits(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.habits = habits
	s.loaded = true
	s.mu.Unlock()

	logger.Debug("Habits loaded", "count", len(habits))
	s.notify()
	return nil
}

// Loaded reports whether Load has succeeded at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.habits)
}

func cloneAll(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}

// Habit looks a habit up by id, then by exact name.
func (s *Store) Habit(key string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.habits {
		if h.ID == key {
			return h.Clone(), nil
		}
	}
	for _, h := range s.habits {
		if h.Name == key {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, key)
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	snapshot := cloneAll(s.habits)
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(cloneAll(snapshot))
	}
}

// refresh re-reads one habit from the provider into the snapshot.
func (s *Store) refresh(ctx context.Context, id string) error {
	h, err := s.provider.GetHabit(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.habits {
		if s.habits[i].ID == id {
			s.habits[i] = h
			replaced = true
			break
		}
	}
	if !replaced {
		s.habits = append(s.habits, h)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Add creates a habit with an empty history and returns it.
func (s *Store) Add(ctx context.Context, name string, t models.HabitType, goal *models.Goal) (models.Habit, error) {
	h := models.Habit{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Type:        t,
		CreatedAt:   time.Now().UTC(),
		Completions: []models.CompletionRecord{},
		Goal:        goal,
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.provider.AddHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	if err := s.refresh(ctx, h.ID); err != nil {
		return models.Habit{}, err
	}
	logger.Info("Habit added", "id", h.ID, "name", h.Name, "type", h.Type)
	return s.Habit(h.ID)
}

// Toggle adds or removes the record for rec.Date on the habit. The amount is
// coerced to match the habit type.
func (s *Store) Toggle(ctx context.Context, habitID string, rec models.CompletionRecord) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	h, err := s.Habit(habitID)
	if err != nil {
		return false, err
	}
	if h.Type != models.HabitCounter {
		rec.Amount = models.NoAmount()
	}

	added, err := s.provider.ToggleCompletion(ctx, h.ID, rec)
	if err != nil {
		return false, err
	}
	if err := s.refresh(ctx, h.ID); err != nil {
		return added, err
	}
	logger.Debug("Completion toggled", "habit", h.ID, "date", rec.Date, "added", added)
	return added, nil
}

func (s *Store) update(ctx context.Context, habitID string, edit func(*models.Habit)) (models.Habit, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	h, err := s.Habit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	edit(&h)
	if err := s.provider.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	if err := s.refresh(ctx, h.ID); err != nil {
		return models.Habit{}, err
	}
	return s.Habit(h.ID)
}

func (s *Store) Rename(ctx context.Context, habitID, name string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidInput)
	}
	return s.update(ctx, habitID, func(h *models.Habit) { h.Name = name })
}

// SetGoal replaces the habit's goal; nil clears it.
func (s *Store) SetGoal(ctx context.Context, habitID string, goal *models.Goal) (models.Habit, error) {
	if goal != nil {
		if err := goal.Validate(); err != nil {
			return models.Habit{}, err
		}
	}
	return s.update(ctx, habitID, func(h *models.Habit) { h.Goal = goal })
}

func (s *Store) Delete(ctx context.Context, habitID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	h, err := s.Habit(habitID)
	if err != nil {
		return err
	}
	if err := s.provider.DeleteHabit(ctx, h.ID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.habits {
		if s.habits[i].ID == h.ID {
			s.habits = append(s.habits[:i:i], s.habits[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	logger.Info("Habit deleted", "id", h.ID, "name", h.Name)
	s.notify()
	return nil
}
