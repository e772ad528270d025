package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitual/internal/models"
)

// FormatCount renders an integer total with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent renders a percentage with at most one decimal.
func FormatPercent(p float64) string {
	return humanize.FtoaWithDigits(math.Round(p*10)/10, 1) + "%"
}

// FormatGoal renders "1,000 / year", or "no goal".
func FormatGoal(g *models.Goal) string {
	if !g.Valid() {
		return "no goal"
	}
	return fmt.Sprintf("%s / %s", FormatCount(g.Target), g.Period)
}

// Bar draws a fixed-width text progress bar. Values over 100% fill the bar.
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
