package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// Authenticator reports whether a bearer token is currently held.
type Authenticator interface {
	IsAuthenticated() bool
}

// RequireSession rejects requests while the session holds no token, so the
// facade never forwards an unauthenticated call upstream.
func RequireSession(sess Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sess.IsAuthenticated() {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Not logged in"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
