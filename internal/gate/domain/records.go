package domain

import (
	"net/netip"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// LoginKind distinguishes the two credential-backed login rows.
type LoginKind string

const (
	LoginSession  LoginKind = "session"
	LoginAPIToken LoginKind = "api_token"
)

// APITokenRecord is an API token row joined with its owning account.
// All of it is read-only to this service.
type APITokenRecord struct {
	TokenID   idx.ID
	UserID    idx.ID
	TokenHash string // argon2 PHC encoded

	// Optional validity bounds; nil means unconstrained.
	NotBefore *time.Time
	Expiry    *time.Time
	Revoked   *time.Time

	// Optional allow-list; nil means any address.
	AllowedIPs []netip.Prefix

	Account Account
}

// SessionLogin is a session login row joined with its owning account.
// TokenExpiry is the store's own expiry marker for the login, checked in
// addition to the token's exp claim.
type SessionLogin struct {
	LoginID     idx.ID
	TokenExpiry time.Time
	Account     Account
}

// Workspace is the slice of a workspace row this service reads.
type Workspace struct {
	ID           idx.ID
	SuperAdminID idx.ID
	Deleted      *time.Time
}

// PermissionRule is one include or exclude row reachable from a login,
// already collapsed across the role-membership and API-token paths.
type PermissionRule struct {
	WorkspaceID  idx.ID
	PermissionID idx.ID
	ResourceID   idx.ID
}
