package auth

import (
	"net/http"
	"strings"

	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/shared"
)

// BearerMiddleware decodes the Authorization header into a request identity.
// Absent or invalid tokens degrade to an anonymous identity rather than an
// error; the authorization layer decides what anonymous callers may reach.
func BearerMiddleware(decoder credential.TokenDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := decoder.Decode(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			identity := shared.Identity{
				SubjectID: claims.SubjectID,
				Role:      strings.ToLower(strings.TrimSpace(claims.Role)),
			}
			ctx := shared.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
