package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/stats"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx      context.Context
	Store    storage.Provider
	State    *state.Store
	Location *time.Location
	// Now is overridable in tests.
	Now func() time.Time
	Out io.Writer
}

func NewContext(ctx context.Context, store storage.Provider, timezone string) (*Context, error) {
	loc, err := utils.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Context{
		Ctx:      ctx,
		Store:    store,
		State:    state.New(store),
		Location: loc,
		Now:      time.Now,
		Out:      os.Stdout,
	}, nil
}

// Load opens the store and fills the state snapshot, once.
func (c *Context) Load() error {
	if c.State.Loaded() {
		return nil
	}
	if err := c.Store.Load(c.Ctx); err != nil {
		return err
	}
	return c.State.Load(c.Ctx)
}

// Today is the reference date in the configured timezone.
func (c *Context) Today() string {
	return stats.Today(c.Now(), c.Location)
}

func (c *Context) Printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

func (c *Context) Println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

// ResolveDate returns day if given (after validation) or today.
func (c *Context) ResolveDate(day string) (string, error) {
	if day == "" {
		return c.Today(), nil
	}
	if _, err := stats.ParseDay(day); err != nil {
		return "", err
	}
	return day, nil
}

// ParseGoal builds a goal from command-line flags. A zero target means no goal.
func ParseGoal(target int, period string) (*models.Goal, error) {
	if target == 0 {
		return nil, nil
	}
	p, err := models.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	g := &models.Goal{Target: target, Period: p}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// FitWidth pads or shortens s to exactly width runes, marking a cut with "...".
func FitWidth(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s + strings.Repeat(" ", width-len(r))
	}
	if width >= 5 {
		return string(r[:width-3]) + "..."
	}
	return string(r[:width])
}

// ParseAmount accepts positive integers with optional thousands separators.
func ParseAmount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: amount must be a positive whole number, got %q", apperrors.ErrInvalidInput, s)
	}
	return n, nil
}
