package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

func TestParseCredentialAPIToken(t *testing.T) {
	t.Parallel()

	loginID := idx.New()
	secret := idx.New()

	cred, err := ParseCredential(FormatAPIToken(loginID, secret))
	require.NoError(t, err)

	apiCred, ok := cred.(domain.APITokenCredential)
	require.True(t, ok)
	require.Equal(t, loginID, apiCred.LoginID)
	require.Equal(t, secret, apiCred.Secret)
}

func TestParseCredentialSessionFallback(t *testing.T) {
	t.Parallel()

	// Anything without the API prefix is treated as an opaque session
	// token, including JWTs and outright garbage.
	for _, raw := range []string{
		"eyJhbGciOiJIUzI1NiJ9.payload.sig",
		"not-a-token",
		"",
	} {
		cred, err := ParseCredential(raw)
		require.NoError(t, err)

		sess, ok := cred.(domain.SessionCredential)
		require.True(t, ok)
		require.Equal(t, raw, sess.Token)
	}
}

func TestParseCredentialMalformed(t *testing.T) {
	t.Parallel()

	loginID := idx.New().String()
	secret := idx.New().String()

	cases := map[string]string{
		"missing secret":      "gtv1." + loginID,
		"extra part":          "gtv1." + loginID + "." + secret + ".more",
		"login not a ulid":    "gtv1.nope." + secret,
		"secret not a ulid":   "gtv1." + loginID + ".nope",
		"empty login":         "gtv1.." + secret,
		"empty secret":        "gtv1." + loginID + ".",
		"prefix only":         "gtv1.",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseCredential(raw)
			require.ErrorIs(t, err, ErrMalformedAPIToken)
		})
	}
}
