package stats

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Range is an inclusive span of calendar dates in YYYY-MM-DD form.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether day falls within the range. Dates are fixed-width and
// zero-padded so lexicographic order matches calendar order.
func (r Range) Contains(day string) bool {
	return day >= r.Start && day <= r.End
}

// ParseDay parses a YYYY-MM-DD date, wrapping failures as ErrInvalidInput.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, s)
	}
	return t, nil
}

func formatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return formatDay(t.AddDate(0, 0, n)), nil
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return constants.DaysPerLeapYear
	}
	return constants.DaysPerYear
}

// DayOfYear returns the 1-based ordinal of day within its year (Jan 1 = 1).
func DayOfYear(day string) (int, error) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, err
	}
	return t.YearDay(), nil
}

// PeriodStart returns the first date of the period containing today:
// the most recent Sunday for weeks, the 1st for months, Jan 1 for years.
func PeriodStart(today string, period models.Period) (string, error) {
	t, err := ParseDay(today)
	if err != nil {
		return "", err
	}

	switch period {
	case models.PeriodDay:
		return today, nil
	case models.PeriodWeek:
		return formatDay(t.AddDate(0, 0, -int(t.Weekday()))), nil
	case models.PeriodMonth:
		return formatDay(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
	case models.PeriodYear:
		return formatDay(time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)), nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", apperrors.ErrInvalidInput, period)
	}
}

// PeriodRange returns [PeriodStart(today, period), today].
func PeriodRange(today string, period models.Period) (Range, error) {
	start, err := PeriodStart(today, period)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: today}, nil
}

// RollingWindow returns the `days` calendar dates ending at and including today.
func RollingWindow(today string, days int) (Range, error) {
	if days < 1 {
		return Range{}, fmt.Errorf("%w: window must cover at least one day, got %d", apperrors.ErrInvalidInput, days)
	}
	start, err := AddDays(today, -(days - 1))
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: today}, nil
}
