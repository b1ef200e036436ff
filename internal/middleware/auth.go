// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iyunix/go-linksports/internal/domain"
)

type TokenValidator interface {
	ValidateToken(token string) (uint, error)
}

type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// NewJWTMiddleware authenticates the request from an "Authorization: Bearer"
// header or the auth_token cookie and stores the loaded user in the context.
// Disabled and deleted accounts are rejected.
func NewJWTMiddleware(tokens TokenValidator, users UserLoader, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeFailure(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, err := tokens.ValidateToken(token)
			if err != nil {
				logger.Debug("invalid token", "error", err, "path", r.URL.Path)
				clearAuthCookie(w)
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil || !user.CanAuthenticate() {
				logger.Warn("token for unavailable account", "user_id", userID, "path", r.URL.Path)
				clearAuthCookie(w)
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after NewJWTMiddleware.
func RequireRole(logger Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeFailure(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Warn("role check failed",
				"user_id", user.ID,
				"role", user.Role,
				"path", r.URL.Path)
			writeFailure(w, http.StatusForbidden, "You are not authorized to access this resource")
		})
	}
}

// UserFromContext returns the user stored by NewJWTMiddleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
