package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{"Store reachable", checkStoreReachable},
		{"Habit integrity", checkHabitIntegrity},
		{"Completion dates", checkCompletionDates},
		{"Clock/timezone", checkClockTimezone},
	}

	failed := 0
	reachable := true
	for _, c := range checks {
		if !reachable {
			ctx.Printf("-  %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		if err := c.run(ctx); err != nil {
			ctx.Printf("x  %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			failed++
			if c.name == "Store reachable" {
				reachable = false
			}
			continue
		}
		ctx.Printf("ok %s\n", c.name)
	}

	if p := logger.Path(); p != "" {
		ctx.Printf("\nLogs: %s\n", p)
	}
	ctx.Println()
	if failed > 0 {
		return fmt.Errorf("%d diagnostic check(s) failed", failed)
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.FetchHabits(ctx.Ctx)
	return err
}

func checkHabitIntegrity(ctx *cli.Context) error {
	var errs []error
	seen := make(map[string]string)
	for _, h := range ctx.State.Habits() {
		if err := h.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("habit %s: %w", h.ID, err))
		}
		if other, ok := seen[h.Name]; ok {
			errs = append(errs, fmt.Errorf("habits %s and %s share the name %q", other, h.ID, h.Name))
		}
		seen[h.Name] = h.ID
	}
	return errors.Join(errs...)
}

func checkCompletionDates(ctx *cli.Context) error {
	var errs []error
	for _, h := range ctx.State.Habits() {
		days := make(map[string]bool, len(h.Completions))
		for _, rec := range h.Completions {
			if !utils.ValidateDateFormat(rec.Date) {
				errs = append(errs, fmt.Errorf("habit %q has a malformed date %q", h.Name, rec.Date))
				continue
			}
			if days[rec.Date] {
				errs = append(errs, fmt.Errorf("habit %q has more than one record on %s", h.Name, rec.Date))
			}
			days[rec.Date] = true
			if h.Type == models.HabitBoolean && rec.Amount.Kind != models.AmountNone {
				errs = append(errs, fmt.Errorf("boolean habit %q has an amount on %s", h.Name, rec.Date))
			}
		}
	}
	return errors.Join(errs...)
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if tz := os.Getenv(constants.EnvTimezone); tz != "" && !utils.ValidateTimezone(tz) {
		return fmt.Errorf("%s=%q is not a known timezone", constants.EnvTimezone, tz)
	}
	ctx.Printf("   Today is %s in %s\n", ctx.Today(), ctx.Location)
	return nil
}
