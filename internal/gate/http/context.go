package http

import (
	"context"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// ContextWithIdentity attaches the verified caller for downstream
// handlers.
func ContextWithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, identity)
}

// IdentityFromContext returns the verified caller injected by the authn
// middleware. ok is false on routes the middleware does not cover.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(ctxKeyIdentity).(*domain.Identity)
	return identity, ok
}
