// Package pg implements the identity, credential and tracking stores on
// PostgreSQL through the database/sql interface of the pgx driver.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to PostgreSQL with pool defaults tuned for the API workload.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Store bundles the per-aggregate stores over one connection pool. It also
// answers the authorization guard's ownership-chain queries.
type Store struct {
	db          *sql.DB
	users       *UserStore
	credentials *CredentialStore
	projects    *ProjectStore
	tasks       *TaskStore
	records     *RecordStore
}

// NewStore constructs the store bundle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:          db,
		users:       &UserStore{db: db},
		credentials: &CredentialStore{db: db},
		projects:    &ProjectStore{db: db},
		tasks:       &TaskStore{db: db},
		records:     &RecordStore{db: db},
	}
}

func (s *Store) Users() *UserStore             { return s.users }
func (s *Store) Credentials() *CredentialStore { return s.credentials }
func (s *Store) Projects() *ProjectStore       { return s.projects }
func (s *Store) Tasks() *TaskStore             { return s.tasks }
func (s *Store) Records() *RecordStore         { return s.records }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// ProjectMemberIDs implements the guard's direct project chain.
func (s *Store) ProjectMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	return s.projects.MemberIDs(ctx, projectID)
}

// ProjectIDForTask implements the task -> project chain.
func (s *Store) ProjectIDForTask(ctx context.Context, taskID string) (string, error) {
	return s.tasks.ProjectID(ctx, taskID)
}

// ProjectIDForRecord implements the record -> task -> project chain.
func (s *Store) ProjectIDForRecord(ctx context.Context, recordID string) (string, error) {
	return s.records.ProjectID(ctx, recordID)
}
