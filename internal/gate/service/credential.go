package service

import (
	"strings"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// APITokenPrefix is the version marker that opens every API token string.
// Anything else is treated as a session token.
const APITokenPrefix = "gtv1"

// ParseCredential classifies a bearer string without touching any store.
// Strings opening with the API token prefix must be exactly
// "gtv1.<login-id>.<secret>" with both parts valid ULIDs; everything else
// is handed to session-token verification opaque.
func ParseCredential(raw string) (domain.Credential, error) {
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, APITokenPrefix+".") {
		return domain.SessionCredential{Token: raw}, nil
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedAPIToken
	}

	loginID, err := idx.Parse(parts[1])
	if err != nil {
		return nil, ErrMalformedAPIToken
	}
	secret, err := idx.Parse(parts[2])
	if err != nil {
		return nil, ErrMalformedAPIToken
	}

	return domain.APITokenCredential{LoginID: loginID, Secret: secret}, nil
}

// FormatAPIToken assembles the printable token string. The issuing side
// lives elsewhere; tests and tooling use this to mint tokens the parser
// accepts.
func FormatAPIToken(loginID, secret idx.ID) string {
	return APITokenPrefix + "." + loginID.String() + "." + secret.String()
}
