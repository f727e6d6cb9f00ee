package service

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// AuthService verifies bearer credentials and produces the caller's
// Identity, grants included. It is the single entry point request
// handling goes through.
type AuthService struct {
	Store           store.Store
	Verifier        *jwtx.HS256Verifier
	Permissions     *PermissionService
	Issuer          string
	Audience        string
	SessionValidity time.Duration
}

// Authenticate parses and verifies the bearer string and resolves the
// caller's grant set. clientIP is the request's source address, enforced
// against API token allow-lists only.
func (s *AuthService) Authenticate(ctx context.Context, bearer string, clientIP netip.Addr) (*domain.Identity, error) {
	cred, err := ParseCredential(bearer)
	if err != nil {
		return nil, err
	}

	switch c := cred.(type) {
	case domain.APITokenCredential:
		return s.authenticateAPIToken(ctx, c, clientIP)
	case domain.SessionCredential:
		return s.authenticateSession(ctx, c)
	default:
		return nil, ErrMalformedAccessToken
	}
}

// authenticateAPIToken checks the token row's validity bounds and IP
// allow-list before the (expensive) secret verification. An unknown login
// id and a wrong secret produce the same error.
func (s *AuthService) authenticateAPIToken(ctx context.Context, cred domain.APITokenCredential, clientIP netip.Addr) (*domain.Identity, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	rec, err := s.Store.APITokens().GetAPIToken(ctx, cred.LoginID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthorizationTokenInvalid
		}
		return nil, serverError(err)
	}

	if rec.NotBefore != nil && now.Before(*rec.NotBefore) {
		return nil, ErrAuthorizationTokenInvalid
	}
	if rec.Expiry != nil && now.After(*rec.Expiry) {
		return nil, ErrAuthorizationTokenInvalid
	}
	if tokenRevoked(rec.Revoked, now) {
		return nil, ErrAuthorizationTokenInvalid
	}

	if len(rec.AllowedIPs) > 0 && !ipAllowed(clientIP, rec.AllowedIPs) {
		l.Info("api token used from outside its allow-list",
			slog.String("login_id", cred.LoginID.String()),
			slog.String("client_ip", clientIP.String()),
		)
		return nil, ErrDisallowedIPAddress
	}

	if err := cryptox.VerifySecret(cred.Secret.String(), rec.TokenHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return nil, ErrAuthorizationTokenInvalid
		}
		// A stored hash that cannot be parsed is our fault, not the
		// caller's.
		return nil, serverError(err)
	}

	grants, err := s.Permissions.GrantsFor(ctx, rec.TokenID, rec.UserID)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		UserID:      rec.Account.ID,
		Username:    rec.Account.Username,
		DisplayName: rec.Account.DisplayName,
		Created:     rec.Account.Created,
		LoginID:     rec.TokenID,
		Grants:      grants,
	}, nil
}

// tokenRevoked reports whether the revocation moment has passed. A
// revoked-at in the future, or exactly now, leaves the token usable
// until that moment arrives.
func tokenRevoked(revoked *time.Time, now time.Time) bool {
	return revoked != nil && now.After(*revoked)
}

// authenticateSession verifies the signature first and then re-checks the
// claims one by one, so each failure classifies precisely. Structural
// problems (signature, issuer, audience) are malformed; time-based and
// store-backed failures unify into the invalid-token error.
func (s *AuthService) authenticateSession(ctx context.Context, cred domain.SessionCredential) (*domain.Identity, error) {
	now := time.Now().UTC()

	claims, err := s.Verifier.Verify(cred.Token)
	if err != nil {
		return nil, ErrMalformedAccessToken
	}

	if err := claims.ValidateIssuer(s.Issuer); err != nil {
		return nil, ErrMalformedAccessToken
	}

	if err := claims.ValidateAge(s.SessionValidity, now); err != nil {
		if errors.Is(err, jwtx.ErrMalformed) {
			return nil, ErrMalformedAccessToken
		}
		return nil, ErrAuthorizationTokenInvalid
	}

	if err := claims.ValidateExpiry(now); err != nil {
		return nil, ErrAuthorizationTokenInvalid
	}

	loginID, err := claims.LoginID()
	if err != nil {
		return nil, ErrMalformedAccessToken
	}

	login, err := s.Store.Logins().GetSessionLogin(ctx, loginID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthorizationTokenInvalid
		}
		return nil, serverError(err)
	}
	if now.After(login.TokenExpiry) {
		return nil, ErrAuthorizationTokenInvalid
	}

	if err := claims.ValidateAudience([]string{s.Audience}); err != nil {
		return nil, ErrMalformedAccessToken
	}

	grants, err := s.Permissions.GrantsFor(ctx, login.LoginID, login.Account.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		UserID:      login.Account.ID,
		Username:    login.Account.Username,
		DisplayName: login.Account.DisplayName,
		Created:     login.Account.Created,
		LoginID:     login.LoginID,
		Grants:      grants,
	}, nil
}

func ipAllowed(addr netip.Addr, allowed []netip.Prefix) bool {
	if !addr.IsValid() {
		return false
	}
	for _, prefix := range allowed {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
