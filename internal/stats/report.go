package stats

import (
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// Report is every derived metric for one habit as of a reference date.
type Report struct {
	HabitID string `json:"habit_id"`
	Today   string `json:"today"`

	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	DoneToday     bool `json:"done_today"`

	TotalThisWeek   int `json:"total_this_week"`
	TotalThisMonth  int `json:"total_this_month"`
	TotalThisYear   int `json:"total_this_year"`
	TotalLast30Days int `json:"total_last_30_days"`
	TotalAllTime    int `json:"total_all_time"`

	// DaysCompletedThisMonth over the day-of-month, as a percentage.
	DaysCompletedThisMonth int     `json:"days_completed_this_month"`
	MonthCompletionRate    float64 `json:"month_completion_rate"`

	HasGoal         bool         `json:"has_goal"`
	Goal            *models.Goal `json:"goal,omitempty"`
	GoalPeriodTotal int          `json:"goal_period_total"`
	GoalProgress    float64      `json:"goal_progress"`
	Targets         Targets      `json:"targets"`

	YearProgress  float64 `json:"year_progress"`
	MonthProgress float64 `json:"month_progress"`
	WeekProgress  float64 `json:"week_progress"`

	ProjectedTotal    int     `json:"projected_total"`
	ProjectedProgress float64 `json:"projected_progress"`
	OnTrack           bool    `json:"on_track"`
}

// Compute derives a Report for habit as of today. Malformed dates are rejected
// before anything is computed.
func Compute(habit models.Habit, today string) (Report, error) {
	t, err := ParseDay(today)
	if err != nil {
		return Report{}, err
	}
	if err := validateCompletions(habit.Completions); err != nil {
		return Report{}, err
	}

	r := Report{HabitID: habit.ID, Today: today}
	c := habit.Completions

	if r.CurrentStreak, err = CurrentStreak(c, today); err != nil {
		return Report{}, err
	}
	if r.LongestStreak, err = LongestStreak(c); err != nil {
		return Report{}, err
	}
	_, r.DoneToday = habit.Completion(today)

	week, _ := PeriodRange(today, models.PeriodWeek)
	month, _ := PeriodRange(today, models.PeriodMonth)
	year, _ := PeriodRange(today, models.PeriodYear)
	last30, _ := RollingWindow(today, constants.OnTrackWindowDays)

	r.TotalThisWeek = sumRange(c, habit.Type, week)
	r.TotalThisMonth = sumRange(c, habit.Type, month)
	r.TotalThisYear = sumRange(c, habit.Type, year)
	r.TotalLast30Days = sumRange(c, habit.Type, last30)
	for _, rec := range c {
		r.TotalAllTime += units(habit.Type, rec)
	}

	// completion rate counts days, independent of amounts
	r.DaysCompletedThisMonth = sumRange(c, models.HabitBoolean, month)
	r.MonthCompletionRate = percent(r.DaysCompletedThisMonth, t.Day())

	r.ProjectedTotal = Project(r.TotalThisYear, t.YearDay(), DaysInYear(t.Year()))

	targets, ok := DeriveTargets(habit.Goal)
	if !ok {
		return r, nil
	}
	g := *habit.Goal
	r.HasGoal = true
	r.Goal = &g
	r.Targets = targets

	native, _ := PeriodRange(today, g.Period)
	r.GoalPeriodTotal = sumRange(c, habit.Type, native)
	r.GoalProgress, _ = GoalProgress(r.GoalPeriodTotal, &g)

	r.YearProgress = percent(r.TotalThisYear, targets.Annual)
	r.MonthProgress = percent(r.TotalThisMonth, targets.Monthly)
	r.WeekProgress = percent(r.TotalThisWeek, targets.Weekly)
	r.ProjectedProgress = percent(r.ProjectedTotal, targets.Annual)
	r.OnTrack = IsOnTrack(r.TotalLast30Days, targets.Monthly)

	return r, nil
}

// Summary is the across-habits banner: how many habits exist, carry goals, and are on track.
type Summary struct {
	Today       string `json:"today"`
	TotalHabits int    `json:"total_habits"`
	WithGoals   int    `json:"with_goals"`
	OnTrack     int    `json:"on_track"`
	DoneToday   int    `json:"done_today"`
}

// AllOnTrack reports whether every habit with a goal is on track.
func (s Summary) AllOnTrack() bool {
	return s.OnTrack == s.WithGoals
}

// Summarize computes a Summary over habits as of today.
func Summarize(habits []models.Habit, today string) (Summary, error) {
	s := Summary{Today: today, TotalHabits: len(habits)}
	for _, h := range habits {
		r, err := Compute(h, today)
		if err != nil {
			return Summary{}, err
		}
		if r.DoneToday {
			s.DoneToday++
		}
		if !r.HasGoal {
			continue
		}
		s.WithGoals++
		if r.OnTrack {
			s.OnTrack++
		}
	}
	return s, nil
}

// Today returns the reference date for now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(constants.DateFormat)
}
