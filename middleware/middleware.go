package middleware

import (
	"context"
	"net/http"
	"strings"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const actorKey contextKey = "actor"

// JWTAuthMiddleware validates the Bearer token and stores the resolved
// actor in the request context.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_BAD_SUBJECT, Description: Token carries malformed user id '%s'", claims.UserID)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		actor := models.Actor{ID: userID, Role: models.UserRole(claims.Role)}
		next.ServeHTTP(w, WithActor(r, actor))
	})
}

// WithActor returns a request whose context carries the given actor.
func WithActor(r *http.Request, actor models.Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey, actor))
}

// AdminOnly rejects requests whose actor is not an admin. Must run after
// JWTAuthMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r)
		if !ok || !actor.IsAdmin() {
			logging.Logger.Warnf("Event ID: ADMIN_ONLY_FORBIDDEN, Description: Non-admin access attempt to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Access denied, admin only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetActor pulls the authenticated actor out of the request context.
func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}
