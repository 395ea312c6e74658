package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ClaimsFromContext returns the verified claims injected by RequireRole.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// WithClaims returns a context carrying the given claims, the same way
// RequireRole injects them.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequireRole gates a route on a valid bearer token and one of the allowed
// roles. Credential problems (missing, malformed, expired) are checked first
// and answered with 401; a valid token with the wrong role gets 403. On
// success the claims are placed in the request context.
func (a *Auth) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				denyJSON(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := a.ValidateToken(token)
			if err != nil {
				denyJSON(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if len(allowed) > 0 && !allowed[claims.Role] {
				denyJSON(w, http.StatusForbidden, "Unauthorized: Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth gates a route on a valid bearer token without restricting role.
func (a *Auth) RequireAuth() func(http.Handler) http.Handler {
	return a.RequireRole()
}

func denyJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
