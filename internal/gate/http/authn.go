package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/internal/gate/service"
	"github.com/aussiebroadwan/gatehouse/pkg/gatesdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// Authenticator runs the full credential pipeline. *service.AuthService
// is the production implementation.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string, clientIP netip.Addr) (*domain.Identity, error)
}

// AuthnMiddleware verifies the bearer credential and injects the
// resulting Identity into the request context. Requests failing
// verification never reach the wrapped handler.
func AuthnMiddleware(auth Authenticator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			bearer, ok := httpx.BearerToken(r)
			if !ok {
				writeBearerError(w, http.StatusUnauthorized,
					gatesdk.ErrorCodeTokenInvalid, "missing bearer token")
				return
			}

			identity, err := auth.Authenticate(ctx, bearer, httpx.RemoteIP(r))
			if err != nil {
				writeAuthFailure(w, log, err)
				return
			}

			ctx = ContextWithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthFailure(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedAPIToken):
		writeBearerError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeMalformedAPIToken, "the API token is malformed")
	case errors.Is(err, service.ErrMalformedAccessToken):
		writeBearerError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeMalformedAccessToken, "the access token is malformed")
	case errors.Is(err, service.ErrDisallowedIPAddress):
		writeBearerError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeDisallowedIP, "this API token may not be used from this address")
	case errors.Is(err, service.ErrAuthorizationTokenInvalid):
		writeBearerError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeTokenInvalid, "the credential is invalid, expired or revoked")
	default:
		log.Warn("authentication failed with server error", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			gatesdk.ErrorCodeServerError, "internal server error")
	}
}

// RFC 6750-style bearer challenge plus the JSON error envelope.
func writeBearerError(w http.ResponseWriter, code int, errCode, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	httpx.WriteError(w, code, errCode, desc)
}
