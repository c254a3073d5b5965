package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RequireAdmin must run after Authenticator.Required. When admins is empty
// any authenticated user is let through; otherwise only the listed
// usernames are (case-insensitive).
func RequireAdmin(admins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(admins))
	for _, name := range admins {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			allowed[name] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[strings.ToLower(claims.Username)]; !ok {
					logger.Warn("Non-admin user attempted to access admin endpoint",
						zap.Int64("user_id", claims.UserID),
						zap.String("username", claims.Username),
					)
					RespondWithError(w, http.StatusForbidden, "insufficient permissions")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
