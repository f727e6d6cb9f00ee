package domain

import (
	"encoding/json"
	"sort"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// GrantKind discriminates a workspace grant.
type GrantKind string

const (
	GrantSuperAdmin GrantKind = "super_admin"
	GrantMember     GrantKind = "member"
)

// PermissionKind discriminates how a permission's resource set applies.
type PermissionKind string

const (
	// PermissionInclude grants the permission on exactly the listed resources.
	PermissionInclude PermissionKind = "include"
	// PermissionExclude grants the permission on everything except the
	// listed resources.
	PermissionExclude PermissionKind = "exclude"
)

// IDSet is a set of identifiers that serialises as a sorted array so
// cached snapshots are byte-stable.
type IDSet map[idx.ID]struct{}

func (s IDSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	out := make(IDSet, len(ids))
	for _, raw := range ids {
		id, err := idx.Parse(raw)
		if err != nil {
			return err
		}
		out[id] = struct{}{}
	}
	*s = out
	return nil
}

// ResourcePermission classifies one permission's resources as either an
// include or an exclude set. A resource is never in both: the most
// recently applied rule kind wins (include removes from a prior exclude
// and vice versa).
type ResourcePermission struct {
	Kind      PermissionKind `json:"kind"`
	Resources IDSet          `json:"resources"`
}

// WorkspaceGrant is the resolved authority within one workspace: either
// full super-admin access or a per-permission membership grant.
type WorkspaceGrant struct {
	Kind        GrantKind                     `json:"kind"`
	Permissions map[idx.ID]ResourcePermission `json:"permissions,omitempty"`
}

// GrantSet maps workspace ids to the caller's grant there. Each workspace
// appears at most once. The value is immutable once resolution finishes.
type GrantSet map[idx.ID]WorkspaceGrant

// MarkSuperAdmin records full access to a workspace, replacing any
// member-level entry.
func (gs GrantSet) MarkSuperAdmin(workspaceID idx.ID) {
	gs[workspaceID] = WorkspaceGrant{Kind: GrantSuperAdmin}
}

// AddExclude records an exclude rule. It reports false without mutating
// when the workspace is already held as super-admin: that combination
// should not occur in consistent data and the caller decides how loudly
// to complain.
func (gs GrantSet) AddExclude(workspaceID, permissionID, resourceID idx.ID) bool {
	grant, ok := gs[workspaceID]
	if !ok {
		grant = WorkspaceGrant{Kind: GrantMember, Permissions: map[idx.ID]ResourcePermission{}}
		gs[workspaceID] = grant
	}
	if grant.Kind == GrantSuperAdmin {
		return false
	}

	perm, ok := grant.Permissions[permissionID]
	if !ok {
		perm = ResourcePermission{Kind: PermissionExclude, Resources: IDSet{}}
	}
	if perm.Kind == PermissionInclude {
		// Exclude applied after an include for the same permission: the
		// later rule removes the resource from the include set.
		delete(perm.Resources, resourceID)
	} else {
		perm.Resources[resourceID] = struct{}{}
	}
	grant.Permissions[permissionID] = perm
	return true
}

// AddInclude records an include rule. Include always wins over a prior
// exclude for the same resource and permission. Reports false without
// mutating for super-admin workspaces, as with AddExclude.
func (gs GrantSet) AddInclude(workspaceID, permissionID, resourceID idx.ID) bool {
	grant, ok := gs[workspaceID]
	if !ok {
		grant = WorkspaceGrant{Kind: GrantMember, Permissions: map[idx.ID]ResourcePermission{}}
		gs[workspaceID] = grant
	}
	if grant.Kind == GrantSuperAdmin {
		return false
	}

	perm, ok := grant.Permissions[permissionID]
	if !ok {
		perm = ResourcePermission{Kind: PermissionInclude, Resources: IDSet{}}
	}
	if perm.Kind == PermissionExclude {
		// The permission is already held in exclude form: granting the
		// resource means removing it from the excluded set.
		delete(perm.Resources, resourceID)
	} else {
		perm.Resources[resourceID] = struct{}{}
	}
	grant.Permissions[permissionID] = perm
	return true
}

// WorkspaceIDs returns the workspaces present in the set, sorted for
// deterministic iteration (the revocation ledger checks them in order).
func (gs GrantSet) WorkspaceIDs() []idx.ID {
	ids := make([]idx.ID, 0, len(gs))
	for id := range gs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
