package models

import (
	"errors"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitual/internal/errors"
)

func TestHabit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		habit   Habit
		wantErr bool
	}{
		{
			name:  "valid boolean habit",
			habit: Habit{ID: "h1", Name: "Meditate", Type: HabitBoolean, CreatedAt: time.Now()},
		},
		{
			name: "valid counter habit with goal",
			habit: Habit{
				ID: "h2", Name: "Write", Type: HabitCounter,
				Goal:        &Goal{Target: 500000, Period: PeriodYear},
				Completions: []CompletionRecord{{Date: "2024-03-01", Amount: WordCount(1200)}},
			},
		},
		{
			name:    "empty name",
			habit:   Habit{ID: "h3", Name: "  ", Type: HabitBoolean},
			wantErr: true,
		},
		{
			name:    "unknown type",
			habit:   Habit{ID: "h4", Name: "Read", Type: "sometimes"},
			wantErr: true,
		},
		{
			name:    "zero goal target",
			habit:   Habit{ID: "h5", Name: "Run", Type: HabitCounter, Goal: &Goal{Target: 0, Period: PeriodWeek}},
			wantErr: true,
		},
		{
			name: "malformed completion date",
			habit: Habit{
				ID: "h6", Name: "Stretch", Type: HabitBoolean,
				Completions: []CompletionRecord{{Date: "2024-3-1"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.habit.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Habit.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("Habit.Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestParseHabitType(t *testing.T) {
	tests := []struct {
		input   string
		want    HabitType
		wantErr bool
	}{
		{"", HabitBoolean, false},
		{"Boolean", HabitBoolean, false},
		{"counter", HabitCounter, false},
		{"count", HabitCounter, false},
		{"rating", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHabitType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHabitType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHabitType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"day", PeriodDay, false},
		{"Weekly", PeriodWeek, false},
		{"month", PeriodMonth, false},
		{"annual", PeriodYear, false},
		{"fortnight", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGoal_Valid(t *testing.T) {
	var nilGoal *Goal
	if nilGoal.Valid() {
		t.Error("nil goal should not be valid")
	}
	if (&Goal{Target: -3, Period: PeriodDay}).Valid() {
		t.Error("negative target should not be valid")
	}
	if !(&Goal{Target: 3, Period: PeriodWeek}).Valid() {
		t.Error("positive weekly target should be valid")
	}
}

func TestPeriod_PeriodsPerYear(t *testing.T) {
	want := map[Period]int{PeriodDay: 365, PeriodWeek: 52, PeriodMonth: 12, PeriodYear: 1, "bogus": 0}
	for p, n := range want {
		if got := p.PeriodsPerYear(); got != n {
			t.Errorf("%q.PeriodsPerYear() = %d, want %d", p, got, n)
		}
	}
}

func TestAmount_Units(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   int
	}{
		{"none", NoAmount(), 0},
		{"zero value", Amount{}, 0},
		{"count", Count(12), 12},
		{"word count", WordCount(850), 850},
		{"negative clamps to zero", Count(-4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.Units(); got != tt.want {
				t.Errorf("Units() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountFor(t *testing.T) {
	if got := AmountFor(HabitBoolean, 7, false); got.Kind != AmountNone {
		t.Errorf("boolean habit amount = %+v, want none", got)
	}
	if got := AmountFor(HabitCounter, 7, false); got != Count(7) {
		t.Errorf("counter habit amount = %+v, want Count(7)", got)
	}
	if got := AmountFor(HabitCounter, 700, true); got != WordCount(700) {
		t.Errorf("counter habit words = %+v, want WordCount(700)", got)
	}
}

func TestToggleCompletion(t *testing.T) {
	base := []CompletionRecord{
		{Date: "2024-01-01", Amount: NoAmount()},
		{Date: "2024-01-02", Amount: NoAmount()},
	}

	added, ok := ToggleCompletion(base, CompletionRecord{Date: "2024-01-03"})
	if !ok || len(added) != 3 || added[2].Date != "2024-01-03" {
		t.Fatalf("toggle on absent date should append, got %v (added=%v)", added, ok)
	}

	removed, ok := ToggleCompletion(added, CompletionRecord{Date: "2024-01-03"})
	if ok {
		t.Fatal("toggle on present date should remove")
	}
	if !reflect.DeepEqual(removed, base) {
		t.Errorf("add then remove should restore the original set, got %v", removed)
	}

	// remove then add is also a no-op on the set of dates
	without, _ := ToggleCompletion(base, CompletionRecord{Date: "2024-01-01"})
	restored, _ := ToggleCompletion(without, CompletionRecord{Date: "2024-01-01"})
	if len(restored) != len(base) {
		t.Errorf("remove then add changed record count: %d", len(restored))
	}

	if len(base) != 2 {
		t.Error("ToggleCompletion must not modify its input")
	}
}

func TestHabit_Clone(t *testing.T) {
	h := Habit{
		ID: "h1", Name: "Read", Type: HabitCounter,
		Goal:        &Goal{Target: 10, Period: PeriodWeek},
		Completions: []CompletionRecord{{Date: "2024-01-01", Amount: Count(2)}},
	}
	c := h.Clone()
	c.Goal.Target = 99
	c.Completions[0].Amount = Count(50)

	if h.Goal.Target != 10 || h.Completions[0].Amount.Value != 2 {
		t.Error("Clone() shares state with the original")
	}
	if rec, ok := h.Completion("2024-01-01"); !ok || rec.Amount.Value != 2 {
		t.Error("Completion() did not find the record")
	}
}
