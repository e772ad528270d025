package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	m := tui.NewModel(ctx.Ctx, ctx.State, ctx.Today)
	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := ctx.State.Subscribe(func(habits []models.Habit) {
		p.Send(tui.HabitsChangedMsg{Habits: habits})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
