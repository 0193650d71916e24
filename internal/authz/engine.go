package authz

// HasPermission reports whether the role owns the permission. Unknown or
// empty roles never match anything.
func (p Policy) HasPermission(role, permission string) bool {
	role = normalize(role)
	if role == "" {
		return false
	}
	perms, ok := p.rolePerms[role]
	if !ok {
		return false
	}
	_, ok = perms[normalize(permission)]
	return ok
}

// HasAnyPermission reports whether the role owns at least one of the
// permissions. An empty permission list grants nothing.
func (p Policy) HasAnyPermission(role string, permissions ...string) bool {
	for _, permission := range permissions {
		if p.HasPermission(role, permission) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role owns every permission listed.
// An empty permission list is vacuously satisfied.
func (p Policy) HasAllPermissions(role string, permissions ...string) bool {
	for _, permission := range permissions {
		if !p.HasPermission(role, permission) {
			return false
		}
	}
	return true
}

// CanAccessRoute reports whether the role may view the path. Paths absent
// from the route table are public, including for anonymous callers.
func (p Policy) CanAccessRoute(role, path string) bool {
	allowed, ok := p.routeRoles[path]
	if !ok {
		return true
	}
	role = normalize(role)
	if role == "" {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// HasRole reports whether role matches any of the candidates,
// case-insensitively.
func HasRole(role string, candidates ...string) bool {
	role = normalize(role)
	if role == "" {
		return false
	}
	for _, candidate := range candidates {
		if role == normalize(candidate) {
			return true
		}
	}
	return false
}
