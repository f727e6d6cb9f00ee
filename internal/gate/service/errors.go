package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAPIToken reports an API token string that does not have
	// the <prefix>.<login-id>.<secret> shape. Rejected before any store
	// access.
	ErrMalformedAPIToken = errors.New("malformed_api_token")

	// ErrMalformedAccessToken reports a session token that is structurally
	// invalid, carries a bad signature, or names the wrong issuer or
	// audience.
	ErrMalformedAccessToken = errors.New("malformed_access_token")

	// ErrAuthorizationTokenInvalid covers every semantic failure of a
	// well-formed credential: expired, revoked, not yet valid, unknown,
	// or wrong secret. Deliberately unified so callers cannot tell which
	// condition failed.
	ErrAuthorizationTokenInvalid = errors.New("authorization_token_invalid")

	// ErrDisallowedIPAddress reports an API token used from outside its
	// IP allow-list. Distinguishable because the legitimate holder can
	// act on it.
	ErrDisallowedIPAddress = errors.New("disallowed_ip_address_for_api_token")

	// ErrServer marks internal faults: corrupt stored hashes and
	// store/cache connectivity failures. Wrapped causes stay inspectable
	// through errors.Is/As.
	ErrServer = errors.New("server_error")

	ErrWorkspaceNotFound = errors.New("workspace_not_found")
	ErrNotSuperAdmin     = errors.New("not_workspace_super_admin")
	ErrWorkspaceNotEmpty = errors.New("workspace_not_empty")
)

func serverError(err error) error {
	return fmt.Errorf("%w: %w", ErrServer, err)
}
