package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	t.Parallel()

	c := jwtx.NewSessionClaims(idx.New(), "issuer-a", testAudience, time.Minute, time.Now())

	require.NoError(t, c.ValidateIssuer("issuer-a"))
	require.NoError(t, c.ValidateIssuer("")) // nothing to enforce
	require.ErrorIs(t, c.ValidateIssuer("issuer-b"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	t.Parallel()

	t.Run("single audience", func(t *testing.T) {
		c := jwtx.NewSessionClaims(idx.New(), testIssuer, []string{"api"}, time.Minute, time.Now())
		require.NoError(t, c.ValidateAudience([]string{"api"}))
		require.ErrorIs(t, c.ValidateAudience([]string{"dashboard"}), jwtx.ErrAudience)
	})

	t.Run("audience list", func(t *testing.T) {
		c := jwtx.NewSessionClaims(idx.New(), testIssuer, []string{"api", "dashboard"}, time.Minute, time.Now())
		require.NoError(t, c.ValidateAudience([]string{"dashboard"}))
	})

	t.Run("empty expectation enforces nothing", func(t *testing.T) {
		c := jwtx.NewSessionClaims(idx.New(), testIssuer, nil, time.Minute, time.Now())
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	c := jwtx.NewSessionClaims(idx.New(), testIssuer, testAudience, 15*time.Minute, now)

	require.NoError(t, c.ValidateExpiry(now.Add(time.Minute)))
	require.ErrorIs(t, c.ValidateExpiry(now.Add(16*time.Minute)), jwtx.ErrExpired)
	require.ErrorIs(t, c.ValidateExpiry(now.Add(-time.Minute)), jwtx.ErrNotYetValid)
}

func TestValidateAge(t *testing.T) {
	t.Parallel()

	minted := time.Now().UTC().Add(-48 * time.Hour)
	c := jwtx.NewSessionClaims(idx.New(), testIssuer, testAudience, time.Minute, minted)

	now := time.Now().UTC()
	require.NoError(t, c.ValidateAge(7*24*time.Hour, now))
	require.ErrorIs(t, c.ValidateAge(24*time.Hour, now), jwtx.ErrTooOld)

	t.Run("non-ulid jti is malformed", func(t *testing.T) {
		bad := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "random-nonce"}}
		require.ErrorIs(t, bad.ValidateAge(time.Hour, now), jwtx.ErrMalformed)
	})
}

func TestLoginID(t *testing.T) {
	t.Parallel()

	loginID := idx.New()
	c := jwtx.NewSessionClaims(loginID, testIssuer, testAudience, time.Minute, time.Now())

	got, err := c.LoginID()
	require.NoError(t, err)
	require.Equal(t, loginID, got)

	bad := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-ulid"}}
	_, err = bad.LoginID()
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
