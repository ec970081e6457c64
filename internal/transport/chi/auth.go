package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/wayfarer-app/wayfarer/internal/domain"
)

type personCtxKey struct{}

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware resolves `Authorization: Bearer <token>` to a person
// via the auth token store and places it in the request context. Requests
// without a valid token get 401; health and metrics pass through.
func BearerAuthMiddleware(people PersonResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeNoLogged, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeNoLogged, "authorization header must use Bearer scheme")
				return
			}

			person, err := people.GetByAccessToken(r.Context(), auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeNoLogged, "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), personCtxKey{}, person)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// personFromContext returns the authenticated person placed by the auth
// middleware. The zero Person means the request was not authenticated.
func personFromContext(ctx context.Context) domain.Person {
	if p, ok := ctx.Value(personCtxKey{}).(domain.Person); ok {
		return p
	}
	return domain.Person{}
}
