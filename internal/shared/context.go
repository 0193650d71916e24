package shared

import "context"

// Identity describes the authenticated subject attached to a request.
// Role is always stored lower-cased; an empty Role means anonymous.
type Identity struct {
	SubjectID string
	Role      string
}

// IsAuthenticated reports whether the identity belongs to a signed-in subject.
func (id Identity) IsAuthenticated() bool {
	return id.SubjectID != ""
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. The zero value is
// returned for unauthenticated requests.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}
