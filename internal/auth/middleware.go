package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const principalKey contextKey = "adminPrincipal"

// RequireAdmin gates a route group behind a valid admin token. The token is
// read from the Authorization bearer header, falling back to the token query
// parameter for the admin frontend.
func RequireAdmin(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" || !a.Verify(token, time.Now()) {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			principal := token[:strings.Index(token, ".")]
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated admin principal if present.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey).(string)
	return principal, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
