package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
)

type SessionState int

const (
	StateList SessionState = iota
	StateAddHabit
	StateAmount
	StateConfirmDelete
)

// HabitsChangedMsg carries a fresh snapshot from the state container.
type HabitsChangedMsg struct {
	Habits []models.Habit
}

// mutationDoneMsg reports the outcome of a store write started from the UI.
type mutationDoneMsg struct {
	status string
	err    error
}

type HabitFormModel struct {
	Name   string
	Type   string
	Goal   string
	Period string
}

type AmountFormModel struct {
	Amount string
	Words  bool
}

type Model struct {
	ctx   context.Context
	store *state.Store
	today func() string

	state       SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model

	form       *huh.Form
	habitForm  *HabitFormModel
	amountForm *AmountFormModel
	// habit the amount form or delete confirmation applies to
	targetID string

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

// NewModel builds the TUI over st. today supplies the reference date, which
// follows the configured timezone.
func NewModel(ctx context.Context, st *state.Store, today func() string) Model {
	hm := habits.New(0, 0)
	hm.SetHabits(st.Habits(), today())

	return Model{
		ctx:         ctx,
		store:       st,
		today:       today,
		state:       StateList,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: hm,
	}
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Help, m.keys.Quit}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Add, m.keys.Toggle, m.keys.Delete},
		{m.keys.Help, m.keys.Quit},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) refresh(habitList []models.Habit) {
	m.habitsModel.SetHabits(habitList, m.today())
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}
