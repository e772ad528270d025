// Package sqlstore holds the habit queries shared by the SQLite and PostgreSQL backends.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
)

// Store runs habit queries against an open database. Queries are written with
// ? placeholders and rebound for the dialect.
type Store struct {
	db              *sql.DB
	dialect         migration.Dialect
	uniqueViolation func(error) bool
}

func New(db *sql.DB, dialect migration.Dialect, uniqueViolation func(error) bool) *Store {
	if uniqueViolation == nil {
		uniqueViolation = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect, uniqueViolation: uniqueViolation}
}

func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: storage not loaded", apperrors.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) rebind(query string) string {
	if s.dialect != migration.Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timestampLayout is fixed width and always UTC so created_at sorts
// chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const habitColumns = "id, name, type, created_at, goal_target, goal_period"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var habitType, createdAt string
	var goalTarget sql.NullInt64
	var goalPeriod sql.NullString

	if err := row.Scan(&h.ID, &h.Name, &habitType, &createdAt, &goalTarget, &goalPeriod); err != nil {
		return models.Habit{}, err
	}
	h.Type = models.HabitType(habitType)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.CreatedAt = t

	if goalTarget.Valid && goalPeriod.Valid {
		h.Goal = &models.Goal{Target: int(goalTarget.Int64), Period: models.Period(goalPeriod.String)}
	}
	h.Completions = []models.CompletionRecord{}
	return h, nil
}

func goalColumns(g *models.Goal) (sql.NullInt64, sql.NullString) {
	if g == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(g.Target), Valid: true}, sql.NullString{String: string(g.Period), Valid: true}
}

func (s *Store) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+habitColumns+" FROM habits ORDER BY created_at, name")
	if err != nil {
		return nil, apperrors.Unavailable("fetch habits", err)
	}
	defer rows.Close()

	var habits []models.Habit
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("fetch habits", err)
	}

	crows, err := s.db.QueryContext(ctx,
		"SELECT habit_id, day, amount_kind, amount, note, created_at FROM completions ORDER BY seq")
	if err != nil {
		return nil, apperrors.Unavailable("fetch completions", err)
	}
	defer crows.Close()

	for crows.Next() {
		habitID, rec, err := scanCompletion(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[habitID]; ok {
			habits[i].Completions = append(habits[i].Completions, rec)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, apperrors.Unavailable("fetch completions", err)
	}

	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

func scanCompletion(row scanner) (string, models.CompletionRecord, error) {
	var habitID, kind, createdAt string
	var rec models.CompletionRecord
	if err := row.Scan(&habitID, &rec.Date, &kind, &rec.Amount.Value, &rec.Note, &createdAt); err != nil {
		return "", models.CompletionRecord{}, err
	}
	rec.Amount.Kind = models.AmountKind(kind)
	if rec.Amount.Kind == models.AmountNone {
		rec.Amount.Value = 0
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return "", models.CompletionRecord{}, fmt.Errorf("failed to parse created_at for completion %s/%s: %w", habitID, rec.Date, err)
	}
	rec.CreatedAt = t
	return habitID, rec, nil
}

func (s *Store) loadCompletions(ctx context.Context, q querier, h *models.Habit) error {
	rows, err := q.QueryContext(ctx, s.rebind(
		"SELECT habit_id, day, amount_kind, amount, note, created_at FROM completions WHERE habit_id = ? ORDER BY seq"), h.ID)
	if err != nil {
		return apperrors.Unavailable("fetch completions", err)
	}
	defer rows.Close()

	for rows.Next() {
		_, rec, err := scanCompletion(rows)
		if err != nil {
			return err
		}
		h.Completions = append(h.Completions, rec)
	}
	return rows.Err()
}

func (s *Store) getHabitWhere(ctx context.Context, column, value string) (models.Habit, error) {
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}

	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+habitColumns+" FROM habits WHERE "+column+" = ?"), value)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, value)
		}
		return models.Habit{}, apperrors.Unavailable("get habit", err)
	}
	if err := s.loadCompletions(ctx, s.db, &h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.getHabitWhere(ctx, "id", id)
}

func (s *Store) GetHabitByName(ctx context.Context, name string) (models.Habit, error) {
	return s.getHabitWhere(ctx, "name", name)
}

// AddHabit inserts the habit and any completions it already carries in one transaction.
func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := habit.Validate(); err != nil {
		return err
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Unavailable("add habit", err)
	}
	defer func() { _ = tx.Rollback() }()

	target, period := goalColumns(habit.Goal)
	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO habits (id, name, type, created_at, goal_target, goal_period)
		VALUES (?, ?, ?, ?, ?, ?)`),
		habit.ID, habit.Name, string(habit.Type), formatTimestamp(habit.CreatedAt), target, period)
	if err != nil {
		if s.uniqueViolation(err) {
			return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
		}
		return apperrors.Unavailable("add habit", err)
	}

	for _, rec := range habit.Completions {
		if err := s.insertCompletion(ctx, tx, habit.ID, rec); err != nil {
			if s.uniqueViolation(err) {
				return fmt.Errorf("%w: duplicate completion for %s", apperrors.ErrInvalidInput, rec.Date)
			}
			return apperrors.Unavailable("add habit", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Unavailable("add habit", err)
	}
	return nil
}

func (s *Store) insertCompletion(ctx context.Context, q querier, habitID string, rec models.CompletionRecord) error {
	if rec.Amount.Kind == "" {
		rec.Amount = models.NoAmount()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := q.ExecContext(ctx, s.rebind(`
		INSERT INTO completions (habit_id, day, amount_kind, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		habitID, rec.Date, string(rec.Amount.Kind), rec.Amount.Value, rec.Note, formatTimestamp(rec.CreatedAt))
	return err
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(habit.Name) == "" {
		return fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidInput)
	}
	if habit.Goal != nil {
		if err := habit.Goal.Validate(); err != nil {
			return err
		}
	}

	target, period := goalColumns(habit.Goal)
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE habits SET name = ?, goal_target = ?, goal_period = ? WHERE id = ?`),
		habit.Name, target, period, habit.ID)
	if err != nil {
		if s.uniqueViolation(err) {
			return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
		}
		return apperrors.Unavailable("update habit", err)
	}
	return requireRow(result, habit.ID)
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, id)
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Unavailable("delete habit", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM completions WHERE habit_id = ?"), id); err != nil {
		return apperrors.Unavailable("delete completions", err)
	}
	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM habits WHERE id = ?"), id)
	if err != nil {
		return apperrors.Unavailable("delete habit", err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Unavailable("delete habit", err)
	}
	return nil
}

func (s *Store) ToggleCompletion(ctx context.Context, habitID string, rec models.CompletionRecord) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if _, err := time.Parse(constants.DateFormat, rec.Date); err != nil {
		return false, fmt.Errorf("%w: completion date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, rec.Date)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperrors.Unavailable("toggle completion", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind("SELECT 1 FROM habits WHERE id = ?"), habitID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, habitID)
		}
		return false, apperrors.Unavailable("toggle completion", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM completions WHERE habit_id = ? AND day = ?"), habitID, rec.Date)
	if err != nil {
		return false, apperrors.Unavailable("toggle completion", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable("toggle completion", err)
	}

	added := removed == 0
	if added {
		if err := s.insertCompletion(ctx, tx, habitID, rec); err != nil {
			return false, apperrors.Unavailable("toggle completion", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, apperrors.Unavailable("toggle completion", err)
	}
	return added, nil
}
