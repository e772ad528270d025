package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
)

type HabitType string

const (
	HabitBoolean HabitType = "boolean"
	HabitCounter HabitType = "counter"
)

// ParseHabitType accepts the stored names plus a few aliases used on the command line.
func ParseHabitType(s string) (HabitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "boolean", "bool", "done":
		return HabitBoolean, nil
	case "counter", "count", "numeric":
		return HabitCounter, nil
	default:
		return "", fmt.Errorf("%w: unknown habit type %q", apperrors.ErrInvalidInput, s)
	}
}

// Habit represents a tracked behavior and its completion history
type Habit struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        HabitType          `json:"type"`
	CreatedAt   time.Time          `json:"created_at"`
	Completions []CompletionRecord `json:"completions"`
	Goal        *Goal              `json:"goal,omitempty"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidInput)
	}
	if h.Type != HabitBoolean && h.Type != HabitCounter {
		return fmt.Errorf("%w: unknown habit type %q", apperrors.ErrInvalidInput, h.Type)
	}
	if h.Goal != nil {
		if err := h.Goal.Validate(); err != nil {
			return err
		}
	}
	for _, rec := range h.Completions {
		if _, err := time.Parse(constants.DateFormat, rec.Date); err != nil {
			return fmt.Errorf("%w: completion date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, rec.Date)
		}
	}
	return nil
}

// Completion returns the record for the given day, if any.
func (h *Habit) Completion(day string) (CompletionRecord, bool) {
	for _, rec := range h.Completions {
		if rec.Date == day {
			return rec, true
		}
	}
	return CompletionRecord{}, false
}

// Clone returns a deep copy so callers can hand out snapshots without sharing slices.
func (h Habit) Clone() Habit {
	out := h
	if h.Completions != nil {
		out.Completions = make([]CompletionRecord, len(h.Completions))
		copy(out.Completions, h.Completions)
	}
	if h.Goal != nil {
		g := *h.Goal
		out.Goal = &g
	}
	return out
}
