package session

import (
	"context"
	"net/http"

	"github.com/mentorhub/mentorhub/internal/httputil"
)

type contextKey string

const principalContextKey contextKey = "principal"

// RequireSession gates a route group on a live session. The resolved
// principal lands in the request context for downstream handlers.
func RequireSession(sessions *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := sessions.FromRequest(r.Context(), r)
			if err != nil {
				httputil.RespondErrorWithCode(w, "authentication required", httputil.CodeNotAuthenticated, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal stored by RequireSession.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}
