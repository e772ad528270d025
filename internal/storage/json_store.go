package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

const jsonStoreVersion = 1

type jsonDocument struct {
	Version int            `json:"version"`
	Habits  []models.Habit `json:"habits"`
}

// JSONStore keeps every habit in a single JSON file, rewritten on each change.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *jsonDocument
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

// Init creates the file if it does not exist yet, otherwise loads it.
func (s *JSONStore) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &jsonDocument{Version: jsonStoreVersion, Habits: []models.Habit{}}
	return s.save()
}

func (s *JSONStore) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized at %s, run 'habitual init' first", s.path)
		}
		return apperrors.Unavailable("read storage", err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > jsonStoreVersion {
		return fmt.Errorf("storage version %d is newer than supported version %d (please upgrade habitual)", doc.Version, jsonStoreVersion)
	}
	if doc.Habits == nil {
		doc.Habits = []models.Habit{}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes to a temp file and renames it over the original. Callers hold mu.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return apperrors.Unavailable("write storage", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Unavailable("write storage", err)
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.doc == nil {
		return fmt.Errorf("%w: storage not loaded", apperrors.ErrStoreUnavailable)
	}
	return nil
}

func (s *JSONStore) indexOf(match func(models.Habit) bool) int {
	for i, h := range s.doc.Habits {
		if match(h) {
			return i
		}
	}
	return -1
}

func (s *JSONStore) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}

	out := make([]models.Habit, len(s.doc.Habits))
	for i, h := range s.doc.Habits {
		out[i] = h.Clone()
	}
	return out, nil
}

func (s *JSONStore) get(match func(models.Habit) bool, key string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	i := s.indexOf(match)
	if i < 0 {
		return models.Habit{}, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, key)
	}
	return s.doc.Habits[i].Clone(), nil
}

func (s *JSONStore) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.get(func(h models.Habit) bool { return h.ID == id }, id)
}

func (s *JSONStore) GetHabitByName(ctx context.Context, name string) (models.Habit, error) {
	return s.get(func(h models.Habit) bool { return h.Name == name }, name)
}

func (s *JSONStore) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := habit.Validate(); err != nil {
		return err
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}
	if habit.Completions == nil {
		habit.Completions = []models.CompletionRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	if s.indexOf(func(h models.Habit) bool { return h.Name == habit.Name || h.ID == habit.ID }) >= 0 {
		return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
	}

	s.doc.Habits = append(s.doc.Habits, habit.Clone())
	return s.save()
}

func (s *JSONStore) UpdateHabit(ctx context.Context, habit models.Habit) error {
	if strings.TrimSpace(habit.Name) == "" {
		return fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidInput)
	}
	if habit.Goal != nil {
		if err := habit.Goal.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	i := s.indexOf(func(h models.Habit) bool { return h.ID == habit.ID })
	if i < 0 {
		return fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, habit.ID)
	}
	if j := s.indexOf(func(h models.Habit) bool { return h.Name == habit.Name }); j >= 0 && j != i {
		return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
	}

	s.doc.Habits[i].Name = habit.Name
	s.doc.Habits[i].Goal = nil
	if habit.Goal != nil {
		g := *habit.Goal
		s.doc.Habits[i].Goal = &g
	}
	return s.save()
}

func (s *JSONStore) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	i := s.indexOf(func(h models.Habit) bool { return h.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, id)
	}
	s.doc.Habits = append(s.doc.Habits[:i], s.doc.Habits[i+1:]...)
	return s.save()
}

func (s *JSONStore) ToggleCompletion(ctx context.Context, habitID string, rec models.CompletionRecord) (bool, error) {
	if _, err := time.Parse(constants.DateFormat, rec.Date); err != nil {
		return false, fmt.Errorf("%w: completion date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, rec.Date)
	}
	if rec.Amount.Kind == "" {
		rec.Amount = models.NoAmount()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return false, err
	}

	i := s.indexOf(func(h models.Habit) bool { return h.ID == habitID })
	if i < 0 {
		return false, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, habitID)
	}

	prev := s.doc.Habits[i].Completions
	next, added := models.ToggleCompletion(prev, rec)
	s.doc.Habits[i].Completions = next
	if err := s.save(); err != nil {
		s.doc.Habits[i].Completions = prev
		return false, err
	}
	return added, nil
}
