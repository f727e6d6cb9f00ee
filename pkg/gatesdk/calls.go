package gatesdk

import (
	"context"
	"net/http"
)

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", "")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", "")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetIdentity resolves the identity and grant set behind a credential.
func (c *SDKClient) GetIdentity(ctx context.Context, bearer string) (*IdentityResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/identity", bearer)
	if err != nil {
		return nil, err
	}

	var identity IdentityResponse
	if err := decodeJSON(resp, &identity, http.StatusOK); err != nil {
		return nil, err
	}

	return &identity, nil
}

// DeleteWorkspace soft-deletes an empty workspace. The bearer must
// belong to the workspace's super-admin.
func (c *SDKClient) DeleteWorkspace(ctx context.Context, bearer, workspaceID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/workspaces/"+workspaceID, bearer)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
