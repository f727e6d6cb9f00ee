package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/store"

	_ "github.com/lib/pq"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the repos work identically inside and outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, dsn: dsn}, nil
}

// NewStoreWithDB wraps an existing connection, mainly for tests that want
// to inject a mock.
func NewStoreWithDB(db *sql.DB, dsn string) *Store {
	return &Store{db: db, dsn: dsn}
}

func (s *Store) Close() error { return s.db.Close() }

// DSN returns the connection string the store was opened with. The change
// relay needs it to open its own LISTEN connection.
func (s *Store) DSN() string { return s.dsn }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) Logins() store.Logins           { return &loginsRepo{q: s.db} }
func (s *Store) APITokens() store.APITokens     { return &apiTokensRepo{q: s.db} }
func (s *Store) Permissions() store.Permissions { return &permissionsRepo{q: s.db} }
func (s *Store) Workspaces() store.Workspaces   { return &workspacesRepo{q: s.db} }

// mapNotFound converts sql.ErrNoRows into the store-level sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
