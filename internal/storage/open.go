package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage/firestore"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/utils"
)

// Backend names the storage implementation selected for a target.
type Backend string

const (
	BackendSQLite    Backend = "sqlite"
	BackendPostgres  Backend = "postgres"
	BackendFirestore Backend = "firestore"
	BackendJSON      Backend = "json"
)

// postgresKeyword selects PostgreSQL with the connection string taken from
// HABITUAL_DB_CONNECTION or the OS keyring.
const postgresKeyword = "postgresql"

var ErrNoConnectionString = errors.New("no PostgreSQL connection string in environment or keyring")

// Detect reports which backend a --config target refers to.
func Detect(target string) Backend {
	t := strings.TrimSpace(target)
	switch {
	case strings.HasPrefix(t, firestore.Scheme):
		return BackendFirestore
	case strings.EqualFold(t, postgresKeyword), strings.EqualFold(t, "postgres"), postgres.IsConnString(t):
		return BackendPostgres
	case strings.HasSuffix(strings.ToLower(t), ".json"):
		return BackendJSON
	default:
		return BackendSQLite
	}
}

// Open builds the Provider for target without connecting. Call Init or Load next.
//
//	firestore://<project-id>        Cloud Firestore
//	postgres://user@host/db, DSN    PostgreSQL (no password in the string)
//	postgresql                      PostgreSQL via env or keyring
//	*.json                          single JSON file
//	anything else                   SQLite file path
func Open(target string) (Provider, error) {
	target = strings.TrimSpace(target)

	switch Detect(target) {
	case BackendFirestore:
		project, ok := firestore.ParseTarget(target)
		if !ok {
			return nil, fmt.Errorf("firestore target %q is missing a project id", target)
		}
		return firestore.New(project), nil

	case BackendPostgres:
		keywordOnly := strings.EqualFold(target, postgresKeyword) || strings.EqualFold(target, "postgres")
		if !keywordOnly {
			if err := postgres.ValidateConnString(target); err != nil {
				return nil, err
			}
		}
		connStr, source := keyring.ResolveConnectionString(target)
		if keywordOnly && source == keyring.SourceConfig {
			return nil, ErrNoConnectionString
		}
		logger.Debug("Using PostgreSQL connection string", "source", source)
		return postgres.New(connStr), nil

	case BackendJSON:
		path, err := utils.ExpandPath(target)
		if err != nil {
			return nil, err
		}
		return NewJSONStore(path), nil

	default:
		path, err := utils.ExpandPath(target)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}
