package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/gatesdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

// LivezHandler is the liveness probe. It returns 200 whenever the process
// is up, with uptime and build version for quick inspection.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
