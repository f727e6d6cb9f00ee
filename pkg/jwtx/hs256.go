package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Signer mints session tokens with a shared symmetric secret. Only
// tests and the token issuer should hold one of these.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer from the shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HS256 secret")
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// HS256Verifier checks structure and signature only. Claim requirements
// (issuer, audience, expiry, age) are deliberately NOT enforced here: the
// caller re-checks them one by one so each failure can be classified
// separately.
type HS256Verifier struct {
	secret []byte
}

// NewVerifierHS256 creates a verifier using the shared secret.
func NewVerifierHS256(secret []byte) (*HS256Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HS256 secret")
	}
	return &HS256Verifier{secret: secret}, nil
}

// Verify validates the JWT string's signature and returns its parsed
// Claims. Structural failures and signature failures are both reported as
// ErrMalformed-wrapped errors; the token is not trustworthy enough to
// distinguish further.
func (v *HS256Verifier) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Claim checks happen in the caller for error-classification control.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	return claims, nil
}
