package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable; everything here is read-mostly, the only writer is the
// workspace soft delete.
type Store interface {
	Logins() Logins
	APITokens() APITokens
	Permissions() Permissions
	Workspaces() Workspaces

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Logins interface {
	// GetSessionLogin returns the session login row joined with its
	// account, for a login of kind 'session' only.
	GetSessionLogin(ctx context.Context, loginID idx.ID) (domain.SessionLogin, error)
}

type APITokens interface {
	// GetAPIToken returns the API token row joined with its account, for
	// a login of kind 'api_token' only.
	GetAPIToken(ctx context.Context, loginID idx.ID) (domain.APITokenRecord, error)
}

// Permissions exposes the three queries behind grant resolution. Each
// collapses the session path (workspace ownership / role membership) and
// the API token path (token-scoped rows) into one shape.
type Permissions interface {
	// SuperAdminWorkspaces lists every workspace the login holds
	// super-admin authority over.
	SuperAdminWorkspaces(ctx context.Context, loginID idx.ID) ([]idx.ID, error)

	// ExcludeRules lists every exclude rule reachable from the login.
	ExcludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error)

	// IncludeRules lists every include rule reachable from the login.
	IncludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error)
}

type Workspaces interface {
	// GetWorkspace returns a live (not soft-deleted) workspace.
	GetWorkspace(ctx context.Context, id idx.ID) (domain.Workspace, error)

	// CountActiveResources counts resources owned by the workspace that
	// have not been soft-deleted.
	CountActiveResources(ctx context.Context, workspaceID idx.ID) (int64, error)

	// SoftDeleteWorkspace marks the workspace deleted. The row-change
	// trigger fires on this update, feeding the change relay.
	SoftDeleteWorkspace(ctx context.Context, id idx.ID) error
}
