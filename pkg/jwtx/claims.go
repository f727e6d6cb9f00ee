package jwtx

import (
	"errors"
	"slices"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTooOld      = errors.New("jwtx: token identifier too old")
)

// Claims are the session-token claims this service consumes. The subject
// is a login id; the jti is a ULID whose embedded timestamp marks when the
// owning session was established, which bounds how long the session stays
// acceptable regardless of individual token expiries.
type Claims struct {
	jwt.RegisteredClaims
}

// NewSessionClaims builds minimally-correct claims for a session token.
// Issuance lives elsewhere; this exists so tests and tooling can mint
// tokens the verifier accepts.
func NewSessionClaims(
	loginID idx.ID,
	issuer string,
	audience []string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   loginID.String(),
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now.UTC()).String(),
		},
	}
}

// LoginID parses the subject claim as a login identifier.
func (c *Claims) LoginID() (idx.ID, error) {
	id, err := idx.Parse(c.Subject)
	if err != nil {
		return idx.Zero, ErrMalformed
	}
	return id, nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
// The aud claim may be a single string or a list; jwt.ClaimStrings
// handles both on decode.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf), against the provided clock.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	return nil
}

// ValidateAge checks that the jti was minted within the given window of
// now. A jti that is not a valid ULID fails as malformed.
func (c *Claims) ValidateAge(window time.Duration, now time.Time) error {
	id, err := idx.Parse(c.ID)
	if err != nil {
		return ErrMalformed
	}

	if id.Age(now) > window {
		return ErrTooOld
	}

	return nil
}
