package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/storage"
)

const testToday = "2024-03-15"

func setupTestModel(t *testing.T, habits ...models.Habit) (Model, *state.Store) {
	t.Helper()
	ctx := context.Background()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	st := state.New(store)
	if err := st.Load(ctx); err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	for _, h := range habits {
		if _, err := st.Add(ctx, h.Name, h.Type, h.Goal); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}

	m := NewModel(ctx, st, func() string { return testToday })
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), st
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to m and returns the updated model and command.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// follow runs cmd, which must produce a message, and feeds that message back.
func follow(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return send(t, m, cmd())
}

func TestToggleBooleanHabit(t *testing.T) {
	m, st := setupTestModel(t, models.Habit{Name: "Read", Type: models.HabitBoolean})

	m, cmd := send(t, m, keyMsg("m"))
	m, cmd = follow(t, m, cmd) // ToggleHabitMsg
	m, _ = follow(t, m, cmd)   // mutationDoneMsg

	if m.status != "Marked Read for "+testToday || m.statusErr {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
	h, err := st.Habit("Read")
	if err != nil {
		t.Fatalf("Habit: %v", err)
	}
	if _, ok := h.Completion(testToday); !ok {
		t.Error("expected a record for today")
	}
	if item, ok := m.habitsModel.Selected(); !ok || !item.Report.DoneToday {
		t.Errorf("list item not refreshed: %+v", item)
	}

	// second toggle removes the record
	m, cmd = send(t, m, keyMsg("m"))
	m, cmd = follow(t, m, cmd)
	m, _ = follow(t, m, cmd)
	if !strings.HasPrefix(m.status, "Unmarked Read") {
		t.Errorf("status = %q", m.status)
	}
	h, _ = st.Habit("Read")
	if len(h.Completions) != 0 {
		t.Errorf("expected no records, got %d", len(h.Completions))
	}
}

func TestToggleCounterAsksForAmount(t *testing.T) {
	m, st := setupTestModel(t, models.Habit{Name: "Pages", Type: models.HabitCounter})

	m, cmd := send(t, m, keyMsg("m"))
	m, _ = follow(t, m, cmd)
	if m.state != StateAmount || m.form == nil {
		t.Fatalf("state = %v, want StateAmount", m.state)
	}

	m.amountForm.Amount = "1,250"
	m.form.State = huh.StateCompleted
	m, cmd = send(t, m, struct{}{})
	if m.state != StateList {
		t.Errorf("state = %v after completing form", m.state)
	}
	m, _ = follow(t, m, cmd)

	h, _ := st.Habit("Pages")
	rec, ok := h.Completion(testToday)
	if !ok || rec.Amount != models.Count(1250) {
		t.Errorf("record = %+v, ok %v", rec, ok)
	}
}

func TestAmountFormEscCancels(t *testing.T) {
	m, st := setupTestModel(t, models.Habit{Name: "Pages", Type: models.HabitCounter})

	m, cmd := send(t, m, keyMsg("m"))
	m, _ = follow(t, m, cmd)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != StateList {
		t.Errorf("state = %v, want StateList", m.state)
	}
	h, _ := st.Habit("Pages")
	if len(h.Completions) != 0 {
		t.Error("cancelled form should not record anything")
	}
}

func TestDeleteHabitConfirm(t *testing.T) {
	m, st := setupTestModel(t, models.Habit{Name: "Read", Type: models.HabitBoolean})

	m, cmd := send(t, m, keyMsg("x"))
	m, _ = follow(t, m, cmd)
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %v, want StateConfirmDelete", m.state)
	}
	if !strings.Contains(m.View(), `Delete "Read"`) {
		t.Errorf("confirmation view missing habit name:\n%s", m.View())
	}

	m, _ = send(t, m, keyMsg("n"))
	if m.state != StateList {
		t.Fatalf("state = %v after cancel", m.state)
	}
	if len(st.Habits()) != 1 {
		t.Fatal("habit deleted despite cancel")
	}

	m, cmd = send(t, m, keyMsg("x"))
	m, _ = follow(t, m, cmd)
	m, cmd = send(t, m, keyMsg("y"))
	m, _ = follow(t, m, cmd)

	if m.status != "Deleted Read" {
		t.Errorf("status = %q", m.status)
	}
	if len(st.Habits()) != 0 {
		t.Error("habit still present after delete")
	}
}

func TestAddHabitOpensForm(t *testing.T) {
	m, _ := setupTestModel(t)

	m, cmd := send(t, m, keyMsg("a"))
	m, _ = follow(t, m, cmd)
	if m.state != StateAddHabit || m.habitForm == nil {
		t.Fatalf("state = %v, want StateAddHabit", m.state)
	}
	if m.habitForm.Type != string(models.HabitBoolean) || m.habitForm.Period != string(models.PeriodYear) {
		t.Errorf("form defaults = %+v", m.habitForm)
	}

	m.habitForm.Name = "Stretch"
	m.habitForm.Goal = "20"
	m.habitForm.Period = "month"
	m.form.State = huh.StateCompleted
	m, cmd = send(t, m, struct{}{})
	m, _ = follow(t, m, cmd)

	h, err := m.store.Habit("Stretch")
	if err != nil {
		t.Fatalf("habit not added: %v (status %q)", err, m.status)
	}
	if h.Goal == nil || *h.Goal != (models.Goal{Target: 20, Period: models.PeriodMonth}) {
		t.Errorf("goal = %+v", h.Goal)
	}
}

func TestHabitsChangedMsgRefreshesList(t *testing.T) {
	m, st := setupTestModel(t)
	if _, ok := m.habitsModel.Selected(); ok {
		t.Fatal("expected empty list")
	}

	if _, err := st.Add(context.Background(), "Walk", models.HabitBoolean, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m, _ = send(t, m, HabitsChangedMsg{Habits: st.Habits()})

	item, ok := m.habitsModel.Selected()
	if !ok || item.Habit.Name != "Walk" {
		t.Errorf("selected = %+v, ok %v", item, ok)
	}
}

func TestMutationErrorShowsStatus(t *testing.T) {
	m, _ := setupTestModel(t)
	m, _ = send(t, m, mutationDoneMsg{err: context.DeadlineExceeded})
	if !m.statusErr || !strings.HasPrefix(m.status, "Error:") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestQuit(t *testing.T) {
	m, _ := setupTestModel(t)
	m, cmd := send(t, m, keyMsg("q"))
	if !m.quitting {
		t.Error("model should be quitting")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestViewHeaderSummary(t *testing.T) {
	m, _ := setupTestModel(t,
		models.Habit{Name: "Read", Type: models.HabitBoolean},
		models.Habit{Name: "Run", Type: models.HabitBoolean, Goal: &models.Goal{Target: 3, Period: models.PeriodWeek}},
	)

	view := m.View()
	for _, want := range []string{"habitual", testToday, "0/2 done today", "0 of 1 goals on track"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHabitFormParse(t *testing.T) {
	tests := []struct {
		name     string
		form     HabitFormModel
		wantType models.HabitType
		wantGoal *models.Goal
		wantErr  bool
	}{
		{"boolean without goal", HabitFormModel{Type: "boolean", Period: "year"}, models.HabitBoolean, nil, false},
		{"counter with goal", HabitFormModel{Type: "counter", Goal: "1,000", Period: "year"}, models.HabitCounter, &models.Goal{Target: 1000, Period: models.PeriodYear}, false},
		{"bad target", HabitFormModel{Type: "counter", Goal: "lots", Period: "year"}, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotGoal, err := tt.form.parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if gotType != tt.wantType {
				t.Errorf("type = %s, want %s", gotType, tt.wantType)
			}
			if (gotGoal == nil) != (tt.wantGoal == nil) || (gotGoal != nil && *gotGoal != *tt.wantGoal) {
				t.Errorf("goal = %+v, want %+v", gotGoal, tt.wantGoal)
			}
		})
	}
}

func TestValidateGoalTarget(t *testing.T) {
	for in, wantErr := range map[string]bool{"": false, "  ": false, "12": false, "0": true, "-1": true, "x": true} {
		if err := validateGoalTarget(in); (err != nil) != wantErr {
			t.Errorf("validateGoalTarget(%q) error = %v, wantErr %v", in, err, wantErr)
		}
	}
}

func TestAmountFormAmount(t *testing.T) {
	tests := []struct {
		name    string
		form    AmountFormModel
		want    models.Amount
		wantErr bool
	}{
		{"count", AmountFormModel{Amount: "25"}, models.Count(25), false},
		{"words", AmountFormModel{Amount: "1,200", Words: true}, models.WordCount(1200), false},
		{"zero", AmountFormModel{Amount: "0"}, models.Amount{}, true},
		{"blank", AmountFormModel{Amount: ""}, models.Amount{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.amount()
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidInput) {
					t.Fatalf("amount() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("amount() = %+v, %v; want %+v", got, err, tt.want)
			}
		})
	}
}
