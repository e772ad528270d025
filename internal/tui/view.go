package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/stats"
	"github.com/julianstephens/habitual/internal/tui/components/detail"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit, StateAmount:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewMain()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	today := m.today()
	header := headerStyle.Render("habitual") + bannerStyle.Render(today)

	s, err := stats.Summarize(m.store.Habits(), today)
	if err != nil || s.TotalHabits == 0 {
		return header
	}
	banner := fmt.Sprintf("%d/%d done today", s.DoneToday, s.TotalHabits)
	if s.WithGoals > 0 {
		if s.AllOnTrack() {
			banner += " · all goals on track"
		} else {
			banner += fmt.Sprintf(" · %d of %d goals on track", s.OnTrack, s.WithGoals)
		}
	}
	return header + bannerStyle.Render(banner)
}

func (m Model) viewMain() string {
	list := docStyle.Render(m.habitsModel.View())

	item, ok := m.habitsModel.Selected()
	if !ok || m.width < 2*detailMinWidth {
		return list
	}
	var pane string
	if item.Err != nil {
		pane = warningStyle.Render(item.Err.Error())
	} else {
		pane = detail.View(item.Habit, item.Report, m.width-m.listWidth())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, docStyle.Render(pane))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	name := m.targetID
	if h, err := m.store.Habit(m.targetID); err == nil {
		name = h.Name
	}
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its history?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
