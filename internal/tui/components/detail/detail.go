package detail

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/stats"
)

// StripDays is the length of the recent-history strip.
const StripDays = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	fillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	behindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	paneStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// Strip reports, oldest first, whether each of the last days ending at today
// has a record.
func Strip(h models.Habit, today string, days int) ([]bool, error) {
	window, err := stats.RollingWindow(today, days)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(h.Completions))
	for _, rec := range h.Completions {
		done[rec.Date] = true
	}
	out := make([]bool, days)
	for i := range out {
		day, _ := stats.AddDays(window.Start, i)
		out[i] = done[day]
	}
	return out, nil
}

func renderStrip(cells []bool) string {
	var b strings.Builder
	for _, c := range cells {
		if c {
			b.WriteString(doneStyle.Render("■"))
		} else {
			b.WriteString(missStyle.Render("·"))
		}
	}
	return b.String()
}

// Bar renders pct (0..100, clamped) as a width-cell bar.
func Bar(pct float64, width int) string {
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(filled, width))
	return fillStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// View renders the statistics pane for one habit.
func View(h models.Habit, r stats.Report, width int) string {
	barWidth := max(10, min(30, width-30))

	strip := ""
	if cells, err := Strip(h, r.Today, StripDays); err == nil {
		strip = renderStrip(cells)
	}

	lines := []string{
		titleStyle.Render(h.Name) + " " + missStyle.Render(string(h.Type)),
		"",
		row("Streak", fmt.Sprintf("%d (best %d)", r.CurrentStreak, r.LongestStreak)),
		row(fmt.Sprintf("Last %d days", StripDays), strip),
	}

	lines = append(lines,
		row("This month", fmt.Sprintf("%d days (%s)", r.DaysCompletedThisMonth, cli.FormatPercent(r.MonthCompletionRate))),
		"",
		row("Week", cli.FormatCount(r.TotalThisWeek)),
		row("Month", cli.FormatCount(r.TotalThisMonth)),
		row("Year", cli.FormatCount(r.TotalThisYear)),
		row("All time", cli.FormatCount(r.TotalAllTime)),
	)

	if !r.HasGoal {
		lines = append(lines, "", row("Projected", cli.FormatCount(r.ProjectedTotal)+" this year"), "", missStyle.Render("No goal set"))
		return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	progress := func(label string, pct float64) string {
		return row(label, Bar(pct, barWidth)+" "+cli.FormatPercent(pct))
	}
	lines = append(lines,
		"",
		row("Goal", cli.FormatGoal(r.Goal)),
		progress("Progress", r.GoalProgress),
		progress("Year pace", r.YearProgress),
		progress("Month pace", r.MonthProgress),
		progress("Week pace", r.WeekProgress),
		row("Projected", fmt.Sprintf("%s (%s)", cli.FormatCount(r.ProjectedTotal), cli.FormatPercent(r.ProjectedProgress))),
		row("Targets", fmt.Sprintf("%s/mo  %s/wk  %s/day",
			cli.FormatCount(r.Targets.Monthly), cli.FormatCount(r.Targets.Weekly), cli.FormatCount(r.Targets.Daily))),
	)
	if r.OnTrack {
		lines = append(lines, "", doneStyle.Render("On track"))
	} else {
		lines = append(lines, "", behindStyle.Render(fmt.Sprintf("Behind: %s in the last 30 days, need %s a month",
			cli.FormatCount(r.TotalLast30Days), cli.FormatCount(r.Targets.Monthly))))
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
