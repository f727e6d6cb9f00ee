package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer pool stays open

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Logins() store.Logins           { return &loginsRepo{q: t.tx} }
func (t *txStore) APITokens() store.APITokens     { return &apiTokensRepo{q: t.tx} }
func (t *txStore) Permissions() store.Permissions { return &permissionsRepo{q: t.tx} }
func (t *txStore) Workspaces() store.Workspaces   { return &workspacesRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
