package habits

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/stats"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with streaks and goal progress."`
	Mark    HabitMarkCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Stats   HabitStatsCmd   `cmd:"" help:"Show statistics for one habit."`
	Summary HabitSummaryCmd `cmd:"" help:"Show how many habits are on track."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Edit    HabitEditCmd    `cmd:"" help:"Rename a habit or change its goal."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Type   string `help:"Habit type: boolean or counter." default:"boolean" short:"t"`
	Goal   int    `help:"Goal target (0 for none)." default:"0"`
	Period string `help:"Goal period: day, week, month or year." default:"year"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	t, err := models.ParseHabitType(c.Type)
	if err != nil {
		return err
	}
	goal, err := cli.ParseGoal(c.Goal, c.Period)
	if err != nil {
		return err
	}

	h, err := ctx.State.Add(ctx.Ctx, c.Name, t, goal)
	if err != nil {
		return err
	}

	ctx.Printf("Added %s habit: %s", h.Type, h.Name)
	if h.Goal != nil {
		ctx.Printf(" (goal %s)", cli.FormatGoal(h.Goal))
	}
	ctx.Println()
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits := ctx.State.Habits()
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitual habit add <name>'.")
		return nil
	}

	today := ctx.Today()
	for _, h := range habits {
		r, err := stats.Compute(h, today)
		if err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}

		status := "[ ]"
		if r.DoneToday {
			status = "[x]"
		}
		line := fmt.Sprintf("%s %s %-8s streak %3d", status, cli.FitWidth(h.Name, 24), h.Type, r.CurrentStreak)
		if r.HasGoal {
			line += fmt.Sprintf("  %s %s of %s", cli.Bar(r.GoalProgress, 10), cli.FormatPercent(r.GoalProgress), cli.FormatGoal(r.Goal))
		}
		ctx.Println(line)
	}
	return nil
}

type HabitMarkCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Amount string `help:"Amount to record for counter habits." default:""`
	Words  bool   `help:"Record the amount as a word count."`
	Note   string `help:"Optional note for this entry." default:""`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.State.Habit(c.Name)
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	rec := models.CompletionRecord{Date: day, Note: c.Note, Amount: models.NoAmount()}
	if _, exists := h.Completion(day); !exists && h.Type == models.HabitCounter {
		if c.Amount == "" {
			return fmt.Errorf("%w: counter habit %q needs --amount", apperrors.ErrInvalidInput, h.Name)
		}
		n, err := cli.ParseAmount(c.Amount)
		if err != nil {
			return err
		}
		rec.Amount = models.AmountFor(h.Type, n, c.Words)
	}

	added, err := ctx.State.Toggle(ctx.Ctx, h.ID, rec)
	if err != nil {
		return err
	}

	if added {
		ctx.Printf("Marked %q for %s", h.Name, day)
		if rec.Amount.Kind != models.AmountNone {
			ctx.Printf(" (%s)", cli.FormatCount(rec.Amount.Value))
		}
		ctx.Println()
	} else {
		ctx.Printf("Unmarked %q for %s\n", h.Name, day)
	}
	return nil
}

type HabitStatsCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Reference date in YYYY-MM-DD format (default: today)." default:""`
	JSON bool   `help:"Print the report as JSON." name:"json"`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.State.Habit(c.Name)
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	r, err := stats.Compute(h, day)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	printReport(ctx, h, r)
	return nil
}

func printReport(ctx *cli.Context, h models.Habit, r stats.Report) {
	ctx.Printf("%s (%s, created %s)\n", h.Name, h.Type, humanize.Time(h.CreatedAt))
	ctx.Printf("  As of %s\n\n", r.Today)

	ctx.Printf("  Current streak   %s %s\n", cli.FormatCount(r.CurrentStreak), humanize.PluralWord(r.CurrentStreak, "day", ""))
	ctx.Printf("  Longest streak   %s %s\n", cli.FormatCount(r.LongestStreak), humanize.PluralWord(r.LongestStreak, "day", ""))
	ctx.Printf("  Days this month  %d of %d (%s)\n", r.DaysCompletedThisMonth, dayOfMonth(r.Today), cli.FormatPercent(r.MonthCompletionRate))
	ctx.Println()

	ctx.Printf("  This week        %s\n", cli.FormatCount(r.TotalThisWeek))
	ctx.Printf("  This month       %s\n", cli.FormatCount(r.TotalThisMonth))
	ctx.Printf("  This year        %s\n", cli.FormatCount(r.TotalThisYear))
	ctx.Printf("  Last %d days     %s\n", constants.OnTrackWindowDays, cli.FormatCount(r.TotalLast30Days))
	ctx.Printf("  All time         %s\n", cli.FormatCount(r.TotalAllTime))

	if !r.HasGoal {
		ctx.Printf("\n  Projected year   %s\n", cli.FormatCount(r.ProjectedTotal))
		return
	}

	ctx.Printf("\n  Goal             %s\n", cli.FormatGoal(r.Goal))
	ctx.Printf("  Progress         %s %s (%s this %s)\n", cli.Bar(r.GoalProgress, 20), cli.FormatPercent(r.GoalProgress), cli.FormatCount(r.GoalPeriodTotal), r.Goal.Period)
	ctx.Printf("  Targets          %s/yr  %s/mo  %s/wk  %s/day\n",
		cli.FormatCount(r.Targets.Annual), cli.FormatCount(r.Targets.Monthly),
		cli.FormatCount(r.Targets.Weekly), cli.FormatCount(r.Targets.Daily))
	ctx.Printf("  Year             %s %s\n", cli.Bar(r.YearProgress, 20), cli.FormatPercent(r.YearProgress))
	ctx.Printf("  Month            %s %s\n", cli.Bar(r.MonthProgress, 20), cli.FormatPercent(r.MonthProgress))
	ctx.Printf("  Week             %s %s\n", cli.Bar(r.WeekProgress, 20), cli.FormatPercent(r.WeekProgress))
	ctx.Printf("  Projected year   %s (%s of annual target)\n", cli.FormatCount(r.ProjectedTotal), cli.FormatPercent(r.ProjectedProgress))

	if r.OnTrack {
		ctx.Println("  On track         yes")
	} else {
		ctx.Printf("  On track         no (%s in the last %d days, monthly target %s)\n",
			cli.FormatCount(r.TotalLast30Days), constants.OnTrackWindowDays, cli.FormatCount(r.Targets.Monthly))
	}
}

func dayOfMonth(day string) int {
	t, err := stats.ParseDay(day)
	if err != nil {
		return 0
	}
	return t.Day()
}

type HabitSummaryCmd struct{}

func (c *HabitSummaryCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	s, err := stats.Summarize(ctx.State.Habits(), ctx.Today())
	if err != nil {
		return err
	}

	ctx.Printf("%d %s, %d done today\n", s.TotalHabits, humanize.PluralWord(s.TotalHabits, "habit", ""), s.DoneToday)
	switch {
	case s.WithGoals == 0:
		ctx.Println("No habits have goals yet.")
	case s.AllOnTrack():
		ctx.Printf("All %d %s with goals on track\n", s.WithGoals, humanize.PluralWord(s.WithGoals, "habit", ""))
	default:
		ctx.Printf("%d of %d habits with goals on track\n", s.OnTrack, s.WithGoals)
	}
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	habits := ctx.State.Habits()
	if c.Habit != "" {
		h, err := ctx.State.Habit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	window, err := stats.RollingWindow(ctx.Today(), c.Days)
	if err != nil {
		return err
	}

	const nameWidth = 20
	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	header := strings.Repeat(" ", nameWidth)
	for i := 0; i < c.Days; i++ {
		day, _ := stats.AddDays(window.Start, i)
		header += " " + day[5:7] + "/" + day[8:10]
	}
	ctx.Println(header)
	ctx.Println(strings.Repeat("-", nameWidth+6*c.Days))

	for _, h := range habits {
		line := cli.FitWidth(h.Name, nameWidth)
		for i := 0; i < c.Days; i++ {
			day, _ := stats.AddDays(window.Start, i)
			mark := "  .   "
			if rec, ok := h.Completion(day); ok {
				mark = "  x   "
				if rec.Amount.Kind != models.AmountNone {
					mark = fmt.Sprintf(" %5s", compactCount(rec.Amount.Value))
				}
			}
			line += mark
		}
		ctx.Println(strings.TrimRight(line, " "))
	}
	return nil
}

type HabitEditCmd struct {
	Name      string `arg:"" help:"Habit name."`
	NewName   string `help:"New name for the habit." name:"name"`
	Goal      int    `help:"New goal target." default:"0"`
	Period    string `help:"Goal period: day, week, month or year." default:"year"`
	ClearGoal bool   `help:"Remove the habit's goal."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.State.Habit(c.Name)
	if err != nil {
		return err
	}
	if c.NewName == "" && c.Goal == 0 && !c.ClearGoal {
		return errors.New("nothing to change: pass --name, --goal or --clear-goal")
	}
	if c.ClearGoal && c.Goal != 0 {
		return errors.New("--goal and --clear-goal cannot be combined")
	}

	if c.NewName != "" {
		if h, err = ctx.State.Rename(ctx.Ctx, h.ID, c.NewName); err != nil {
			return err
		}
	}
	if c.ClearGoal || c.Goal != 0 {
		goal, err := cli.ParseGoal(c.Goal, c.Period)
		if err != nil {
			return err
		}
		if h, err = ctx.State.SetGoal(ctx.Ctx, h.ID, goal); err != nil {
			return err
		}
	}

	ctx.Printf("Updated habit: %s (%s)\n", h.Name, cli.FormatGoal(h.Goal))
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.State.Habit(c.Name)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and its %d %s?", h.Name, len(h.Completions), humanize.PluralWord(len(h.Completions), "record", ""))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.State.Delete(ctx.Ctx, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

// compactCount fits a daily amount into a five-column log cell.
func compactCount(n int) string {
	if n < 10000 {
		return strconv.Itoa(n)
	}
	return strings.ReplaceAll(humanize.SIWithDigits(float64(n), 0, ""), " ", "")
}
