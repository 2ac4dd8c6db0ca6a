package auth

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
)

// NewMiddleware rejects requests without a valid Bearer token.
// If validator is nil, every request is rejected (fail closed).
func NewMiddleware(validator *JWTValidator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpx.WriteUnauthorized(w, r, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httpx.WriteUnauthorized(w, r, "Invalid Authorization header format (expected 'Bearer <token>')")
				return
			}

			if validator == nil {
				httpx.WriteUnauthorized(w, r, "Authentication not configured")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				httpx.WriteUnauthorized(w, r, "Invalid or expired token")
				return
			}
			if claims.Subject == "" {
				httpx.WriteUnauthorized(w, r, "Token subject is required")
				return
			}

			role := claims.Role
			if role == "" {
				role = RoleUser
			}
			ctx := WithUser(r.Context(), &UserContext{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only for users holding role.
func RequireRole(role string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r.Context())
			if u == nil {
				httpx.WriteUnauthorized(w, r, "")
				return
			}
			if u.Role != role {
				httpx.WriteProblem(w, r, http.StatusForbidden, "authorization", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
