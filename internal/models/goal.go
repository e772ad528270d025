package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	case "daily":
		return PeriodDay, nil
	case "weekly":
		return PeriodWeek, nil
	case "monthly":
		return PeriodMonth, nil
	case "yearly", "annual":
		return PeriodYear, nil
	default:
		return "", fmt.Errorf("%w: unknown goal period %q", apperrors.ErrInvalidInput, s)
	}
}

// PeriodsPerYear is the number of whole periods used to annualize a target.
func (p Period) PeriodsPerYear() int {
	switch p {
	case PeriodDay:
		return constants.DaysPerYear
	case PeriodWeek:
		return constants.WeeksPerYear
	case PeriodMonth:
		return constants.MonthsPerYear
	case PeriodYear:
		return 1
	default:
		return 0
	}
}

// Goal is a target amount denominated in a period unit
type Goal struct {
	Target int    `json:"target"`
	Period Period `json:"period"`
}

// Valid reports whether the goal can drive progress metrics. A goal with a
// non-positive target is treated as no goal at all.
func (g *Goal) Valid() bool {
	return g != nil && g.Target > 0 && g.Period.PeriodsPerYear() > 0
}

func (g *Goal) Validate() error {
	if g.Target <= 0 {
		return fmt.Errorf("%w: goal target must be positive, got %d", apperrors.ErrInvalidInput, g.Target)
	}
	if g.Period.PeriodsPerYear() == 0 {
		return fmt.Errorf("%w: unknown goal period %q", apperrors.ErrInvalidInput, g.Period)
	}
	return nil
}

func (g Goal) String() string {
	return fmt.Sprintf("%d/%s", g.Target, g.Period)
}
