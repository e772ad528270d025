// Package firestore stores habits as documents in a Cloud Firestore collection.
// Completion records are embedded in the habit document, so deleting a habit
// removes its history in the same write.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Scheme prefixes a Firestore target: firestore://<project-id>.
const Scheme = "firestore://"

type Store struct {
	projectID  string
	collection string
	clientOpts []option.ClientOption
	client     *firestore.Client
}

type Option func(*Store)

// WithCollection overrides the habits collection name.
func WithCollection(name string) Option {
	return func(s *Store) { s.collection = name }
}

// WithClientOptions replaces credential discovery with explicit client options.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Store) { s.clientOpts = opts }
}

func New(projectID string, opts ...Option) *Store {
	s := &Store{projectID: projectID, collection: constants.HabitsCollection}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseTarget extracts the project id from a firestore:// target.
func ParseTarget(target string) (string, bool) {
	if !strings.HasPrefix(target, Scheme) {
		return "", false
	}
	project := strings.Trim(strings.TrimPrefix(target, Scheme), "/")
	return project, project != ""
}

func (s *Store) connect(ctx context.Context) error {
	opts := s.clientOpts
	if opts == nil {
		var err error
		if opts, err = credentialOptions(); err != nil {
			return err
		}
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: s.projectID}, opts...)
	if err != nil {
		return apperrors.Unavailable("initialize firebase app", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return apperrors.Unavailable("connect to firestore", err)
	}
	s.client = client
	return nil
}

// Init connects; Firestore has no schema to create.
func (s *Store) Init(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) Load(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	return s.connect(ctx)
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return Scheme + s.projectID
}

func (s *Store) ready() error {
	if s.client == nil {
		return fmt.Errorf("%w: firestore not loaded", apperrors.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) habits() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// mapErr converts gRPC status codes into store errors.
func mapErr(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrAlreadyExists) || errors.Is(err, apperrors.ErrInvalidInput) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, id)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, id)
	}
	return apperrors.Unavailable(op, err)
}

func decode(snap *firestore.DocumentSnapshot) (models.Habit, error) {
	var d habitDoc
	if err := snap.DataTo(&d); err != nil {
		return models.Habit{}, fmt.Errorf("failed to decode habit %s: %w", snap.Ref.ID, err)
	}
	return toHabit(snap.Ref.ID, d), nil
}

func (s *Store) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	iter := s.habits().Documents(ctx)
	defer iter.Stop()

	habits := []models.Habit{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapErr("fetch habits", "", err)
		}
		h, err := decode(snap)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	sortHabits(habits)
	return habits, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}
	snap, err := s.habits().Doc(id).Get(ctx)
	if err != nil {
		return models.Habit{}, mapErr("get habit", id, err)
	}
	return decode(snap)
}

func (s *Store) byName(name string) firestore.Query {
	return s.habits().Where("name", "==", name).Limit(1)
}

func (s *Store) GetHabitByName(ctx context.Context, name string) (models.Habit, error) {
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}
	snaps, err := s.byName(name).Documents(ctx).GetAll()
	if err != nil {
		return models.Habit{}, mapErr("get habit", name, err)
	}
	if len(snaps) == 0 {
		return models.Habit{}, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, name)
	}
	return decode(snaps[0])
}

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

	ref := s.habits().Doc(habit.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(s.byName(habit.Name)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
		}
		return tx.Create(ref, fromHabit(habit))
	})
	return mapErr("add habit", habit.ID, err)
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

	ref := s.habits().Doc(habit.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		others, err := tx.Documents(s.byName(habit.Name)).GetAll()
		if err != nil {
			return err
		}
		for _, o := range others {
			if o.Ref.ID != habit.ID {
				return fmt.Errorf("%w: habit %q", apperrors.ErrAlreadyExists, habit.Name)
			}
		}

		var goal any = firestore.Delete
		if g := fromGoal(habit.Goal); g != nil {
			goal = g
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "name", Value: habit.Name},
			{Path: "metadata.goal", Value: goal},
		})
	})
	return mapErr("update habit", habit.ID, err)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.habits().Doc(id).Delete(ctx, firestore.Exists)
	return mapErr("delete habit", id, err)
}

// ToggleCompletion reads, toggles and writes back the completion list inside a
// transaction, so concurrent toggles on one habit retry rather than overwrite.
func (s *Store) ToggleCompletion(ctx context.Context, habitID string, rec models.CompletionRecord) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if _, err := time.Parse(constants.DateFormat, rec.Date); err != nil {
		return false, fmt.Errorf("%w: completion date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, rec.Date)
	}
	if rec.Amount.Kind == "" {
		rec.Amount = models.NoAmount()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ref := s.habits().Doc(habitID)
	var added bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		h, err := decode(snap)
		if err != nil {
			return err
		}

		var recs []models.CompletionRecord
		recs, added = models.ToggleCompletion(h.Completions, rec)
		docs, dates := completionFields(recs)
		return tx.Update(ref, []firestore.Update{
			{Path: "completions", Value: docs},
			{Path: "completedDates", Value: dates},
		})
	})
	if err != nil {
		return false, mapErr("toggle completion", habitID, err)
	}
	return added, nil
}
