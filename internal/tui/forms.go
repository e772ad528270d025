package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

func NewHabitForm(f *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Done / not done", string(models.HabitBoolean)),
					huh.NewOption("Counter (pages, words, reps...)", string(models.HabitCounter)),
				).
				Value(&f.Type),
			huh.NewInput().
				Title("Goal target").
				Description("Leave empty for no goal").
				Value(&f.Goal).
				Validate(validateGoalTarget),
			huh.NewSelect[string]().
				Title("Goal period").
				Options(
					huh.NewOption("Per day", string(models.PeriodDay)),
					huh.NewOption("Per week", string(models.PeriodWeek)),
					huh.NewOption("Per month", string(models.PeriodMonth)),
					huh.NewOption("Per year", string(models.PeriodYear)),
				).
				Value(&f.Period),
		),
	).WithShowHelp(true)
}

func validateGoalTarget(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := cli.ParseAmount(s); err != nil {
		return errors.New("goal must be a positive whole number, or leave empty")
	}
	return nil
}

// parse turns the completed form into a habit type and goal.
func (f *HabitFormModel) parse() (models.HabitType, *models.Goal, error) {
	t, err := models.ParseHabitType(f.Type)
	if err != nil {
		return "", nil, err
	}
	target := 0
	if strings.TrimSpace(f.Goal) != "" {
		if target, err = cli.ParseAmount(f.Goal); err != nil {
			return "", nil, err
		}
	}
	goal, err := cli.ParseGoal(target, f.Period)
	return t, goal, err
}

func NewAmountForm(f *AmountFormModel, habitName string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How much for "+habitName+" today?").
				Value(&f.Amount).
				Validate(func(s string) error {
					_, err := cli.ParseAmount(s)
					return err
				}),
			huh.NewConfirm().
				Title("Record as a word count?").
				Affirmative("Words").
				Negative("Count").
				Value(&f.Words),
		),
	)
}

func (f *AmountFormModel) amount() (models.Amount, error) {
	n, err := cli.ParseAmount(f.Amount)
	if err != nil {
		return models.Amount{}, err
	}
	return models.AmountFor(models.HabitCounter, n, f.Words), nil
}
