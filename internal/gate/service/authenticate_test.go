package service

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
)

const (
	testIssuer   = "https://auth.test"
	testAudience = "gatehouse"
)

var testJWTSecret = []byte("test-signing-secret")

func newAuthService(t *testing.T, fs *fakeStore) *AuthService {
	t.Helper()

	verifier, err := jwtx.NewVerifierHS256(testJWTSecret)
	require.NoError(t, err)

	return &AuthService{
		Store:           fs,
		Verifier:        verifier,
		Permissions:     newTestPermissions(t, fs),
		Issuer:          testIssuer,
		Audience:        testAudience,
		SessionValidity: 30 * 24 * time.Hour,
	}
}

func seedAPIToken(t *testing.T, fs *fakeStore) (idx.ID, idx.ID, domain.APITokenRecord) {
	t.Helper()

	loginID := idx.New()
	secret := idx.New()

	hash, err := cryptox.HashSecret(secret.String())
	require.NoError(t, err)

	userID := idx.New()
	rec := domain.APITokenRecord{
		TokenID:   loginID,
		UserID:    userID,
		TokenHash: hash,
		Account: domain.Account{
			ID:          userID,
			Username:    "alex",
			DisplayName: "Alex",
			Created:     time.Now().UTC().Add(-time.Hour),
		},
	}
	fs.apiTokens[loginID] = rec
	return loginID, secret, rec
}

func signSession(t *testing.T, claims jwtx.Claims) string {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testJWTSecret)
	require.NoError(t, err)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func clientAddr() netip.Addr {
	return netip.MustParseAddr("203.0.113.7")
}

func TestAuthenticateAPIToken(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, secret, rec := seedAPIToken(t, fs)

	svc := newAuthService(t, fs)
	identity, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), clientAddr())
	require.NoError(t, err)

	require.Equal(t, rec.UserID, identity.UserID)
	require.Equal(t, "alex", identity.Username)
	require.Equal(t, loginID, identity.LoginID)
	require.NotNil(t, identity.Grants)
}

func TestAuthenticateAPITokenWrongSecret(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _, _ := seedAPIToken(t, fs)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, idx.New()), clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateAPITokenUnknownLogin(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	svc := newAuthService(t, fs)

	// Unknown login id and wrong secret are indistinguishable.
	_, err := svc.Authenticate(context.Background(), FormatAPIToken(idx.New(), idx.New()), clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateAPITokenTimeBounds(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := map[string]func(rec *domain.APITokenRecord){
		"not yet valid": func(rec *domain.APITokenRecord) { rec.NotBefore = &future },
		"expired":       func(rec *domain.APITokenRecord) { rec.Expiry = &past },
		"revoked":       func(rec *domain.APITokenRecord) { rec.Revoked = &past },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fs := newFakeStore()
			loginID, secret, _ := seedAPIToken(t, fs)

			rec := fs.apiTokens[loginID]
			mutate(&rec)
			fs.apiTokens[loginID] = rec

			svc := newAuthService(t, fs)
			_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), clientAddr())
			require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
		})
	}
}

func TestAuthenticateAPITokenFutureRevocationStillValid(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, secret, _ := seedAPIToken(t, fs)

	future := time.Now().UTC().Add(time.Hour)
	rec := fs.apiTokens[loginID]
	rec.Revoked = &future
	fs.apiTokens[loginID] = rec

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), clientAddr())
	require.NoError(t, err)
}

func TestTokenRevokedBoundary(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	require.False(t, tokenRevoked(nil, now))
	require.False(t, tokenRevoked(&future, now))
	require.True(t, tokenRevoked(&past, now))

	// Revoked-at exactly now still passes; the token dies the instant after.
	require.False(t, tokenRevoked(&now, now))
}

func TestAuthenticateAPITokenIPAllowList(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, secret, _ := seedAPIToken(t, fs)

	rec := fs.apiTokens[loginID]
	rec.AllowedIPs = []netip.Prefix{netip.MustParsePrefix("203.0.113.0/24")}
	fs.apiTokens[loginID] = rec

	svc := newAuthService(t, fs)

	t.Run("inside allow-list", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), netip.MustParseAddr("203.0.113.7"))
		require.NoError(t, err)
	})

	t.Run("outside allow-list", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), netip.MustParseAddr("198.51.100.1"))
		require.ErrorIs(t, err, ErrDisallowedIPAddress)
	})

	t.Run("invalid source address", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), netip.Addr{})
		require.ErrorIs(t, err, ErrDisallowedIPAddress)
	})
}

func TestAuthenticateAPITokenCorruptHash(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, secret, _ := seedAPIToken(t, fs)

	rec := fs.apiTokens[loginID]
	rec.TokenHash = "not-a-phc-hash"
	fs.apiTokens[loginID] = rec

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), FormatAPIToken(loginID, secret), clientAddr())
	require.ErrorIs(t, err, ErrServer)
}

func seedSessionLogin(t *testing.T, fs *fakeStore) (idx.ID, domain.SessionLogin) {
	t.Helper()

	loginID := idx.New()
	login := domain.SessionLogin{
		LoginID:     loginID,
		TokenExpiry: time.Now().UTC().Add(time.Hour),
		Account: domain.Account{
			ID:          idx.New(),
			Username:    "sam",
			DisplayName: "Sam",
			Created:     time.Now().UTC().Add(-24 * time.Hour),
		},
	}
	fs.sessionLogins[loginID] = login
	return loginID, login
}

func TestAuthenticateSession(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, login := seedSessionLogin(t, fs)

	claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{testAudience}, time.Hour, time.Now().UTC())
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	identity, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.NoError(t, err)

	require.Equal(t, login.Account.ID, identity.UserID)
	require.Equal(t, "sam", identity.Username)
	require.Equal(t, loginID, identity.LoginID)
}

func TestAuthenticateSessionGarbage(t *testing.T) {
	t.Parallel()

	svc := newAuthService(t, newFakeStore())
	_, err := svc.Authenticate(context.Background(), "definitely not a jwt", clientAddr())
	require.ErrorIs(t, err, ErrMalformedAccessToken)
}

func TestAuthenticateSessionWrongSignature(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)

	claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{testAudience}, time.Hour, time.Now().UTC())
	signer, err := jwtx.NewSignerHS256([]byte("some-other-secret"))
	require.NoError(t, err)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	svc := newAuthService(t, fs)
	_, err = svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrMalformedAccessToken)
}

func TestAuthenticateSessionWrongIssuerBeforeStoreAccess(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)
	fs.queries.Store(0)

	claims := jwtx.NewSessionClaims(loginID, "https://somewhere.else", []string{testAudience}, time.Hour, time.Now().UTC())
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrMalformedAccessToken)
	require.Zero(t, fs.queries.Load())
}

func TestAuthenticateSessionTooOld(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)

	// A fresh token whose session identifier predates the validity
	// window: the session itself has aged out.
	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{testAudience}, time.Hour, now)
	claims.ID = idx.NewAt(now.Add(-31 * 24 * time.Hour)).String()
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateSessionExpired(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)

	claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{testAudience}, time.Hour, time.Now().UTC().Add(-2*time.Hour))
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateSessionUnknownLogin(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()

	claims := jwtx.NewSessionClaims(idx.New(), testIssuer, []string{testAudience}, time.Hour, time.Now().UTC())
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateSessionStoreExpiryPassed(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)

	login := fs.sessionLogins[loginID]
	login.TokenExpiry = time.Now().UTC().Add(-time.Minute)
	fs.sessionLogins[loginID] = login

	claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{testAudience}, time.Hour, time.Now().UTC())
	token := signSession(t, claims)

	svc := newAuthService(t, fs)
	_, err := svc.Authenticate(context.Background(), token, clientAddr())
	require.ErrorIs(t, err, ErrAuthorizationTokenInvalid)
}

func TestAuthenticateSessionAudience(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	loginID, _ := seedSessionLogin(t, fs)
	svc := newAuthService(t, fs)

	t.Run("missing expected audience", func(t *testing.T) {
		claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{"someone-else"}, time.Hour, time.Now().UTC())
		_, err := svc.Authenticate(context.Background(), signSession(t, claims), clientAddr())
		require.ErrorIs(t, err, ErrMalformedAccessToken)
	})

	t.Run("expected audience among many", func(t *testing.T) {
		claims := jwtx.NewSessionClaims(loginID, testIssuer, []string{"someone-else", testAudience}, time.Hour, time.Now().UTC())
		_, err := svc.Authenticate(context.Background(), signSession(t, claims), clientAddr())
		require.NoError(t, err)
	})
}

func TestAuthenticateSessionBadSubject(t *testing.T) {
	t.Parallel()

	fs := newFakeStore()
	svc := newAuthService(t, fs)

	now := time.Now().UTC()
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "not-a-ulid",
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        idx.NewAt(now).String(),
		},
	}
	_, err := svc.Authenticate(context.Background(), signSession(t, claims), clientAddr())
	require.ErrorIs(t, err, ErrMalformedAccessToken)
}
