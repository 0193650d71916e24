// Package authz implements the role and permission resolution engine used to
// gate console routes and actions. Decisions are pure functions over a static
// policy loaded once at startup; gating here is advisory and handlers still
// validate server-side.
package authz

import "strings"

// Roles form a closed set. The names are opaque enumerated tags; no meaning
// is inferred from their text.
const (
	RoleAdmin           = "admin"
	RoleBranchManager   = "branch manager"
	RoleVolunteer       = "volunteer"
	RoleAffectedCitizen = "affected citizen"
)

// Permissions declared for RBAC.
const (
	PermManageInventory   = "manage_inventory"
	PermDispatchResources = "dispatch_resources"
	PermCreateEmergency   = "create_emergency"
	PermApproveRequests   = "approve_requests"
	PermManageDonations   = "manage_donations"
	PermViewAnalytics     = "view_analytics"
	PermManageUsers       = "manage_users"
	PermRequestResources  = "request_resources"
	PermViewOwnRequests   = "view_own_requests"
	PermTrackOwnDispatch  = "track_own_dispatches"
)

// AllPermissions lists every permission tag known to the platform.
func AllPermissions() []string {
	return []string{
		PermManageInventory,
		PermDispatchResources,
		PermCreateEmergency,
		PermApproveRequests,
		PermManageDonations,
		PermViewAnalytics,
		PermManageUsers,
		PermRequestResources,
		PermViewOwnRequests,
		PermTrackOwnDispatch,
	}
}

// Policy holds the role→permission and route→role tables. It is immutable
// after construction and safe for concurrent readers.
type Policy struct {
	rolePerms  map[string]map[string]struct{}
	routeRoles map[string]map[string]struct{}
}

// NewPolicy builds a Policy from plain tables. Role, permission, and route
// keys are normalized once here so lookups never re-case.
func NewPolicy(rolePerms map[string][]string, routeRoles map[string][]string) Policy {
	p := Policy{
		rolePerms:  make(map[string]map[string]struct{}, len(rolePerms)),
		routeRoles: make(map[string]map[string]struct{}, len(routeRoles)),
	}
	for role, perms := range rolePerms {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			perm = normalize(perm)
			if perm == "" {
				continue
			}
			set[perm] = struct{}{}
		}
		p.rolePerms[normalize(role)] = set
	}
	for path, roles := range routeRoles {
		set := make(map[string]struct{}, len(roles))
		for _, role := range roles {
			role = normalize(role)
			if role == "" {
				continue
			}
			set[role] = struct{}{}
		}
		p.routeRoles[path] = set
	}
	return p
}

// DefaultPolicy returns the static production policy.
func DefaultPolicy() Policy {
	return NewPolicy(
		map[string][]string{
			RoleAdmin: AllPermissions(),
			RoleBranchManager: {
				PermManageInventory,
				PermDispatchResources,
				PermCreateEmergency,
				PermApproveRequests,
				PermManageDonations,
				PermViewAnalytics,
			},
			RoleVolunteer: {
				PermViewOwnRequests,
				PermTrackOwnDispatch,
			},
			RoleAffectedCitizen: {
				PermRequestResources,
				PermCreateEmergency,
				PermViewOwnRequests,
				PermTrackOwnDispatch,
			},
		},
		map[string][]string{
			"/dashboard": {RoleAdmin, RoleBranchManager, RoleVolunteer, RoleAffectedCitizen},
			"/inventory": {RoleAdmin, RoleBranchManager},
			"/donations": {RoleAdmin, RoleBranchManager},
			"/dispatch":  {RoleAdmin, RoleBranchManager},
			"/tracking":  {RoleAdmin, RoleBranchManager, RoleVolunteer, RoleAffectedCitizen},
			"/requests":  {RoleAdmin, RoleBranchManager, RoleAffectedCitizen},
			"/analytics": {RoleAdmin, RoleBranchManager},
			"/users":     {RoleAdmin},
		},
	)
}

// normalize is the single casing point for role and permission tags.
func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
