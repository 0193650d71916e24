package authz

import "testing"

func testPolicy() Policy {
	return NewPolicy(
		map[string][]string{
			"admin":     {"manage_inventory", "dispatch_resources", "manage_users"},
			"volunteer": {"track_own_dispatches"},
		},
		map[string][]string{
			"/inventory": {"admin"},
			"/tracking":  {"admin", "volunteer"},
		},
	)
}

func TestHasPermissionTable(t *testing.T) {
	policy := DefaultPolicy()
	granted := map[string][]string{
		RoleAdmin: AllPermissions(),
		RoleBranchManager: {
			PermManageInventory, PermDispatchResources, PermCreateEmergency,
			PermApproveRequests, PermManageDonations, PermViewAnalytics,
		},
		RoleVolunteer:       {PermViewOwnRequests, PermTrackOwnDispatch},
		RoleAffectedCitizen: {PermRequestResources, PermCreateEmergency, PermViewOwnRequests, PermTrackOwnDispatch},
	}
	for role, perms := range granted {
		owned := make(map[string]bool, len(perms))
		for _, perm := range perms {
			owned[perm] = true
			if !policy.HasPermission(role, perm) {
				t.Errorf("expected %s to own %s", role, perm)
			}
		}
		for _, perm := range AllPermissions() {
			if !owned[perm] && policy.HasPermission(role, perm) {
				t.Errorf("expected %s to lack %s", role, perm)
			}
		}
	}
}

func TestHasPermissionUnknownRole(t *testing.T) {
	policy := testPolicy()
	for _, role := range []string{"", "dispatcher", "root", "  "} {
		for _, perm := range []string{"manage_inventory", "dispatch_resources", "manage_users", "track_own_dispatches"} {
			if policy.HasPermission(role, perm) {
				t.Fatalf("role %q must not own %q", role, perm)
			}
		}
	}
}

func TestHasPermissionCaseInsensitive(t *testing.T) {
	policy := testPolicy()
	if !policy.HasPermission("Volunteer", "track_own_dispatches") {
		t.Fatalf("mixed-case role must resolve like lower-case")
	}
	if policy.HasPermission("Volunteer", "x") != policy.HasPermission("volunteer", "x") {
		t.Fatalf("casing changed the decision")
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	policy := testPolicy()
	if !policy.HasAnyPermission("admin", "nope", "manage_users") {
		t.Fatalf("expected any-match on manage_users")
	}
	if policy.HasAnyPermission("admin") {
		t.Fatalf("empty list must grant nothing for any-match")
	}
	if !policy.HasAllPermissions("admin", "manage_inventory", "dispatch_resources") {
		t.Fatalf("expected all-match")
	}
	if policy.HasAllPermissions("admin", "manage_inventory", "nope") {
		t.Fatalf("all-match must fail on a missing permission")
	}
	if !policy.HasAllPermissions("volunteer") {
		t.Fatalf("empty list is vacuously satisfied for all-match")
	}
}

func TestCanAccessRoute(t *testing.T) {
	policy := testPolicy()
	// Paths absent from the table are public for everyone, anonymous included.
	for _, role := range []string{"", "admin", "volunteer", "stranger"} {
		if !policy.CanAccessRoute(role, "/about") {
			t.Fatalf("unlisted path must be public for role %q", role)
		}
	}
	if !policy.CanAccessRoute("admin", "/inventory") {
		t.Fatalf("admin must access /inventory")
	}
	if policy.CanAccessRoute("volunteer", "/inventory") {
		t.Fatalf("volunteer must not access /inventory")
	}
	if policy.CanAccessRoute("", "/tracking") {
		t.Fatalf("anonymous must not access a gated path")
	}
	if !policy.CanAccessRoute("VOLUNTEER", "/tracking") {
		t.Fatalf("role casing must not matter on routes")
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole("Branch Manager", "branch manager") {
		t.Fatalf("expected case-insensitive match")
	}
	if !HasRole("admin", "volunteer", "admin") {
		t.Fatalf("expected set membership match")
	}
	if HasRole("", "admin") {
		t.Fatalf("empty role matches nothing")
	}
	if HasRole("admin", "") {
		t.Fatalf("empty candidate matches nothing")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("branch manager"); got != "Branch Manager" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := DisplayName(""); got != "Guest" {
		t.Fatalf("unexpected anonymous label %q", got)
	}
}
