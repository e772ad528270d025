// Package stats derives streaks, period totals, goal progress and pace projections
// from a habit's completion history. Every function is pure: inputs are never
// mutated or retained, so callers may share a habit snapshot across goroutines.
package stats

import (
	"math"
	"sort"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func validateCompletions(completions []models.CompletionRecord) error {
	for _, rec := range completions {
		if _, err := ParseDay(rec.Date); err != nil {
			return err
		}
	}
	return nil
}

// units is what a single record contributes to a total for the given habit type.
func units(t models.HabitType, rec models.CompletionRecord) int {
	if t == models.HabitCounter {
		return rec.Amount.Units()
	}
	return 1
}

// CurrentStreak counts consecutive days with a record, walking backward from today.
// If today itself has no record the streak is 0, whatever came before.
func CurrentStreak(completions []models.CompletionRecord, today string) (int, error) {
	t, err := ParseDay(today)
	if err != nil {
		return 0, err
	}
	if err := validateCompletions(completions); err != nil {
		return 0, err
	}

	done := make(map[string]struct{}, len(completions))
	for _, rec := range completions {
		done[rec.Date] = struct{}{}
	}

	streak := 0
	for {
		if _, ok := done[formatDay(t)]; !ok {
			break
		}
		streak++
		t = t.AddDate(0, 0, -1)
	}
	return streak, nil
}

// LongestStreak returns the longest run of consecutive dated records anywhere in the history.
func LongestStreak(completions []models.CompletionRecord) (int, error) {
	if err := validateCompletions(completions); err != nil {
		return 0, err
	}
	if len(completions) == 0 {
		return 0, nil
	}

	days := make([]string, 0, len(completions))
	seen := make(map[string]struct{}, len(completions))
	for _, rec := range completions {
		if _, ok := seen[rec.Date]; ok {
			continue
		}
		seen[rec.Date] = struct{}{}
		days = append(days, rec.Date)
	}
	sort.Strings(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		next, _ := AddDays(days[i-1], 1)
		if days[i] == next {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest, nil
}

// TotalForPeriod sums record amounts dated within [start, end] inclusive. Boolean
// habits count 1 per record; counter habits contribute their stored amount.
func TotalForPeriod(completions []models.CompletionRecord, t models.HabitType, start, end string) (int, error) {
	if _, err := ParseDay(start); err != nil {
		return 0, err
	}
	if _, err := ParseDay(end); err != nil {
		return 0, err
	}
	if err := validateCompletions(completions); err != nil {
		return 0, err
	}
	return sumRange(completions, t, Range{Start: start, End: end}), nil
}

func sumRange(completions []models.CompletionRecord, t models.HabitType, r Range) int {
	total := 0
	for _, rec := range completions {
		if r.Contains(rec.Date) {
			total += units(t, rec)
		}
	}
	return total
}

// GoalProgress returns total as a percentage of goal.Target. The value is not
// capped at 100. ok is false when there is no usable goal.
func GoalProgress(total int, goal *models.Goal) (pct float64, ok bool) {
	if !goal.Valid() {
		return 0, false
	}
	return percent(total, goal.Target), true
}

func percent(total, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(total) / float64(target) * 100
}

// ProjectedTotal extrapolates the year-end total from the run-rate so far.
func ProjectedTotal(totalSoFar int, today string) (int, error) {
	t, err := ParseDay(today)
	if err != nil {
		return 0, err
	}
	return Project(totalSoFar, t.YearDay(), DaysInYear(t.Year())), nil
}

// Project is the arithmetic behind ProjectedTotal. A non-positive dayOfYear
// returns totalSoFar unchanged.
func Project(totalSoFar, dayOfYear, daysInYear int) int {
	if dayOfYear <= 0 {
		return totalSoFar
	}
	dailyRate := float64(totalSoFar) / float64(dayOfYear)
	remaining := daysInYear - dayOfYear
	if remaining < 0 {
		remaining = 0
	}
	return int(math.Round(float64(totalSoFar) + dailyRate*float64(remaining)))
}

// Targets are a goal restated per year, month, week and day.
type Targets struct {
	Annual  int `json:"annual"`
	Monthly int `json:"monthly"`
	Weekly  int `json:"weekly"`
	Daily   int `json:"daily"`
}

// DeriveTargets annualizes the goal (target × periods per year) and splits the
// annual figure into monthly, weekly and daily targets. The same rule applies to
// every habit type.
func DeriveTargets(goal *models.Goal) (Targets, bool) {
	if !goal.Valid() {
		return Targets{}, false
	}
	annual := goal.Target * goal.Period.PeriodsPerYear()
	return Targets{
		Annual:  annual,
		Monthly: roundDiv(annual, constants.MonthsPerYear),
		Weekly:  roundDiv(annual, constants.WeeksPerYear),
		Daily:   roundDiv(annual, constants.DaysPerYear),
	}, true
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

// IsOnTrack reports whether the rolling 30-day total meets the monthly target.
func IsOnTrack(totalLast30Days, monthlyTarget int) bool {
	return totalLast30Days >= monthlyTarget
}
