package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/storage/sqlstore"
	"github.com/julianstephens/habitual/migrations"
)

const uniqueViolationCode = "23505"

// Store is the PostgreSQL habit store. Tables live in the habitual schema.
type Store struct {
	connStr string
	*sqlstore.Store
}

func New(connStr string) *Store {
	s := &Store{connStr: connStr}
	if withPath, err := withSearchPath(connStr); err != nil {
		logger.Warn("Failed to set search_path on connection string", "error", err)
	} else {
		s.connStr = withPath
	}
	return s
}

func (s *Store) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return nil, apperrors.Unavailable("open database", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return nil, apperrors.Unavailable("connect", fmt.Errorf("%w (hint: try adding sslmode=disable to your connection string)", err))
		}
		return nil, apperrors.Unavailable("connect", err)
	}
	return db, nil
}

func (s *Store) Init(ctx context.Context) error {
	if s.Store == nil {
		db, err := s.connect(ctx)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
			db.Close()
			return fmt.Errorf("failed to create schema: %w", err)
		}
		s.Store = sqlstore.New(db, migration.Postgres, isUniqueViolation)
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.Store != nil {
		return nil
	}

	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	s.Store = sqlstore.New(db, migration.Postgres, isUniqueViolation)

	return s.validateSchemaVersion(ctx)
}

func (s *Store) Close() error {
	db := s.DB()
	if db == nil {
		return nil
	}
	s.Store = nil
	return db.Close()
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.DB(), subFS, migration.Postgres), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg, "backend", "postgres")
	})
	return err
}

func (s *Store) validateSchemaVersion(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx)
}

// GetConfigPath returns a non-sensitive identifier instead of the connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == uniqueViolationCode
}
