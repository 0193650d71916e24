package authz

import (
	"log/slog"
	"net/http"

	"github.com/reliefgrid/reliefgrid/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers. The role is
// resolved from the request identity placed in context by the auth layer.
type Middleware struct {
	Policy Policy
	Logger *slog.Logger
}

// RequireAny ensures the caller has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role := shared.IdentityFromContext(r.Context()).Role
			if m.Policy.HasAnyPermission(role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, role)
		})
	}
}

// RequireAll ensures the caller has every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := shared.IdentityFromContext(r.Context()).Role
			if m.Policy.HasAllPermissions(role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, role)
		})
	}
}

// RequireRoles ensures the caller holds one of the listed roles.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := shared.IdentityFromContext(r.Context()).Role
			if HasRole(role, roles...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, role)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, role string) {
	if m.Logger != nil {
		m.Logger.Warn("authorization denied",
			slog.String("path", r.URL.Path),
			slog.String("role", role))
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
