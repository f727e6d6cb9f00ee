/*
Package gatesdk provides a client for the gatehouse authentication
service.

Create an SDKClient for health checks and bearer-authenticated calls:

	client := gatesdk.NewSDKClient("https://gate.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Resolve the identity behind a credential
	identity, err := client.GetIdentity(ctx, bearerToken)

	// Delete an empty workspace as its super-admin
	err = client.DeleteWorkspace(ctx, bearerToken, workspaceID)

The bearer token is either a session JWT minted by the platform's token
issuer or an API token string of the form "gtv1.<login-id>.<secret>".
The SDK never stores credentials; callers pass the bearer per request.

Errors from the service decode into *APIError, carrying the HTTP status
and the service's error code:

	identity, err := client.GetIdentity(ctx, token)
	var apiErr *gatesdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "authorization_token_invalid" {
		// credential expired or revoked
	}
*/
package gatesdk
