package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/gatesdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It reports degraded with a 503
// when either the database or the permission cache is unreachable, since
// the service cannot authenticate requests without both.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	ca *cache.Client,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &gatesdk.HealthChecks{
			Database: "ok",
			Cache:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check cache connectivity
		if err := ca.Ping(r.Context()); err != nil {
			checks.Cache = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := gatesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
