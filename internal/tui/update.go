package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
)

const detailMinWidth = 48

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitsModel.SetSize(m.listWidth(), max(0, msg.Height-6))
		return m, nil

	case HabitsChangedMsg:
		m.refresh(msg.Habits)
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			logger.Warn("TUI mutation failed", "error", msg.err)
			m.setStatus(apperrors.Format(msg.err), true)
		} else {
			m.setStatus(msg.status, false)
		}
		m.refresh(m.store.Habits())
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateAmount:
		return m.updateAmount(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.habitsModel.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			}
		}

	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{Type: string(models.HabitBoolean), Period: string(models.PeriodYear)}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.ToggleHabitMsg:
		return m.startToggle(msg.ID)

	case habits.DeleteHabitMsg:
		m.targetID = msg.ID
		m.state = StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) listWidth() int {
	if m.width < 2*detailMinWidth {
		return m.width
	}
	return m.width / 2
}

// startToggle removes today's record directly, or asks for an amount first
// when a counter habit is being marked.
func (m Model) startToggle(id string) (tea.Model, tea.Cmd) {
	h, err := m.store.Habit(id)
	if err != nil {
		m.setStatus(apperrors.Format(err), true)
		return m, nil
	}

	today := m.today()
	if _, done := h.Completion(today); !done && h.Type == models.HabitCounter {
		m.targetID = id
		m.amountForm = &AmountFormModel{}
		m.form = NewAmountForm(m.amountForm, h.Name)
		m.state = StateAmount
		return m, m.form.Init()
	}

	return m, m.toggleCmd(h, models.CompletionRecord{Date: today, Amount: models.NoAmount()})
}

func (m Model) toggleCmd(h models.Habit, rec models.CompletionRecord) tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		added, err := st.Toggle(ctx, h.ID, rec)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		if added {
			return mutationDoneMsg{status: fmt.Sprintf("Marked %s for %s", h.Name, rec.Date)}
		}
		return mutationDoneMsg{status: fmt.Sprintf("Unmarked %s for %s", h.Name, rec.Date)}
	}
}

// updateForm feeds msg to the active form. It reports the form state after
// the update; esc aborts.
func (m *Model) updateForm(msg tea.Msg) (huh.FormState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return huh.StateAborted, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m.form.State, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	formState, cmd := m.updateForm(msg)
	switch formState {
	case huh.StateCompleted:
		m.state = StateList
		t, goal, err := m.habitForm.parse()
		if err != nil {
			m.setStatus(apperrors.Format(err), true)
			return m, nil
		}
		ctx, st, name := m.ctx, m.store, m.habitForm.Name
		return m, func() tea.Msg {
			h, err := st.Add(ctx, name, t, goal)
			if err != nil {
				return mutationDoneMsg{err: err}
			}
			return mutationDoneMsg{status: "Added " + h.Name}
		}
	case huh.StateAborted:
		m.state = StateList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateAmount(msg tea.Msg) (tea.Model, tea.Cmd) {
	formState, cmd := m.updateForm(msg)
	switch formState {
	case huh.StateCompleted:
		m.state = StateList
		h, err := m.store.Habit(m.targetID)
		if err != nil {
			m.setStatus(apperrors.Format(err), true)
			return m, nil
		}
		amount, err := m.amountForm.amount()
		if err != nil {
			m.setStatus(apperrors.Format(err), true)
			return m, nil
		}
		return m, m.toggleCmd(h, models.CompletionRecord{Date: m.today(), Amount: amount})
	case huh.StateAborted:
		m.state = StateList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.state = StateList
		h, err := m.store.Habit(m.targetID)
		if err != nil {
			m.setStatus(apperrors.Format(err), true)
			return m, nil
		}
		ctx, st := m.ctx, m.store
		return m, func() tea.Msg {
			if err := st.Delete(ctx, h.ID); err != nil {
				return mutationDoneMsg{err: err}
			}
			return mutationDoneMsg{status: "Deleted " + h.Name}
		}
	case "n", "N", "esc", "q":
		m.state = StateList
	}
	return m, nil
}
