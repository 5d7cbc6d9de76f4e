package httpx

import (
	"context"
	"net/http"
	"strings"

	"lendingapi/internal/platform/crypto"
)

// AccountChecker reports whether an account may keep making authenticated
// requests. Locked accounts are rejected even with an unexpired token.
type AccountChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

func AuthMiddleware(secret string, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
				return
			}

			if accounts != nil {
				active, err := accounts.IsActive(r.Context(), claims.UserID())
				if err != nil {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown account", nil)
					return
				}
				if !active {
					JSONError(w, r, http.StatusForbidden, "USER_INACTIVE", "Account is locked", nil)
					return
				}
			}

			ctx := ContextWithUser(r.Context(), claims.UserID(), claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFrom(r) != "ADMIN" {
			JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Administrator role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
