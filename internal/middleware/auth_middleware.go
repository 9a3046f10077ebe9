package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"notes-server/internal/service"
	"notes-server/pkg/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware resolves the bearer token against the user store on
// every request; the token carries no claims of its own.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			user, err := authService.Resolve(parts[1])
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					response.Unauthorized(w, "Invalid token")
					return
				}
				response.InternalError(w, "Failed to resolve token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
