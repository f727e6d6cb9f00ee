package http

import (
	"net/http"
	"sort"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/gatesdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

// IdentityHandler serves GET /v1/identity: the verified caller and their
// resolved grant set. The authn middleware has already done the work.
func IdentityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized,
				gatesdk.ErrorCodeTokenInvalid, "no identity in request")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, identityResponse(identity))
	}
}

func identityResponse(identity *domain.Identity) gatesdk.IdentityResponse {
	grants := make(map[string]gatesdk.WorkspaceGrant, len(identity.Grants))
	for workspaceID, grant := range identity.Grants {
		out := gatesdk.WorkspaceGrant{Kind: string(grant.Kind)}
		if len(grant.Permissions) > 0 {
			out.Permissions = make(map[string]gatesdk.ResourcePermission, len(grant.Permissions))
			for permissionID, perm := range grant.Permissions {
				resources := make([]string, 0, len(perm.Resources))
				for id := range perm.Resources {
					resources = append(resources, id.String())
				}
				sort.Strings(resources)
				out.Permissions[permissionID.String()] = gatesdk.ResourcePermission{
					Kind:      string(perm.Kind),
					Resources: resources,
				}
			}
		}
		grants[workspaceID.String()] = out
	}

	return gatesdk.IdentityResponse{
		UserID:      identity.UserID.String(),
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Created:     identity.Created,
		LoginID:     identity.LoginID.String(),
		Grants:      grants,
	}
}
