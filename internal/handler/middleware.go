package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	churchIDKey contextKey = "churchID"
	roleKey     contextKey = "role"
)

// JWTAuthMiddleware validates Bearer tokens and injects the caller's
// identity (user, church, role) into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Sub)
			ctx = context.WithValue(ctx, churchIDKey, claims.ChurchID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ChurchScopeMiddleware rejects requests whose {churchId} path parameter
// does not match the church in the caller's token. Every tenant-scoped route
// sits behind this.
func ChurchScopeMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathChurch := chi.URLParam(r, "churchId")
			tokenChurch := ChurchIDFromContext(r.Context())
			if pathChurch == "" || pathChurch != tokenChurch {
				logger.Warn("auth: church scope violation",
					zap.String("path", r.URL.Path),
					zap.String("token_church", tokenChurch),
				)
				writeError(w, http.StatusForbidden, "forbidden: wrong church")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects callers below the given role. Roles are ordered
// viewer < editor < admin.
func RequireRole(role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RoleFromContext(r.Context())
			if !domain.RoleAllows(have, role) {
				logger.Warn("auth: insufficient role",
					zap.String("path", r.URL.Path),
					zap.String("have", have),
					zap.String("want", role),
				)
				writeError(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// ChurchIDFromContext extracts the authenticated church ID from context.
func ChurchIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(churchIDKey).(string)
	return v
}

// RoleFromContext extracts the authenticated role from context.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(roleKey).(string)
	return v
}
