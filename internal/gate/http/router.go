package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	"github.com/aussiebroadwan/gatehouse/internal/gate/service"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache *cache.Client

	AuthService      *service.AuthService
	WorkspaceService *service.WorkspaceService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	ca *cache.Client,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        ca,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIdentity()
	r.registerWorkspaces()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIdentity() {
	// GET /v1/identity - authenticated, moderate rate limit
	// Each miss of the permission cache costs a credential verification
	// plus a full permission resolution, so keep the limit moderate.
	secured := httpx.Chain(IdentityHandler(),
		AuthnMiddleware(r.AuthService),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/identity", secured)
}

func (r *Router) registerWorkspaces() {
	h := &WorkspaceHandler{Workspaces: r.WorkspaceService}

	// DELETE /v1/workspaces/{id} - strict rate limit (destructive operation)
	secured := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		AuthnMiddleware(r.AuthService),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)

	r.Mux.Handle("DELETE /v1/workspaces/{id}", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - public rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
