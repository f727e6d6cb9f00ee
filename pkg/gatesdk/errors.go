package gatesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes the service returns. Matching is by string so SDK and
// service versions can drift without breaking callers.
const (
	ErrorCodeMalformedAPIToken     = "malformed_api_token"
	ErrorCodeMalformedAccessToken  = "malformed_access_token"
	ErrorCodeTokenInvalid          = "authorization_token_invalid"
	ErrorCodeDisallowedIP          = "disallowed_ip_address_for_api_token"
	ErrorCodeWorkspaceNotFound     = "workspace_not_found"
	ErrorCodeNotSuperAdmin         = "not_workspace_super_admin"
	ErrorCodeWorkspaceNotEmpty     = "workspace_not_empty"
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeServerError           = "server_error"
)

// APIError is a typed error decoded from the service's error envelope.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Code is the service's error code (e.g., "authorization_token_invalid")
	Code string

	// Description is a human-readable description of the error
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error,
			Description: envelope.Description,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
