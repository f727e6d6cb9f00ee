package gatesdk

import "time"

// HealthResponse represents the response structure for health check
// endpoints. Used by both /livez and /readyz (readyz includes the Checks
// field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the relational store connection status
	Database string `json:"database"`

	// Cache indicates the permission cache connection status
	Cache string `json:"cache"`
}

// ResourcePermission classifies one permission's resources. Kind is
// "include" (permission on exactly these resources) or "exclude"
// (permission on everything except these resources).
type ResourcePermission struct {
	Kind      string   `json:"kind"`
	Resources []string `json:"resources"`
}

// WorkspaceGrant is the caller's authority within one workspace. Kind is
// "super_admin" (Permissions empty) or "member".
type WorkspaceGrant struct {
	Kind        string                        `json:"kind"`
	Permissions map[string]ResourcePermission `json:"permissions,omitempty"`
}

// IdentityResponse is the verified caller returned by GET /v1/identity.
type IdentityResponse struct {
	UserID      string                    `json:"user_id"`
	Username    string                    `json:"username"`
	DisplayName string                    `json:"display_name,omitempty"`
	Created     time.Time                 `json:"created"`
	LoginID     string                    `json:"login_id"`
	Grants      map[string]WorkspaceGrant `json:"grants"`
}

// ErrorResponse is the JSON error envelope the service returns.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}
