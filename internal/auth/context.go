package auth

import "context"

type contextKey struct{}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserContext struct {
	UserID string
	Email  string
	Role   string
}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func GetUser(ctx context.Context) *UserContext {
	if u, ok := ctx.Value(contextKey{}).(*UserContext); ok {
		return u
	}
	return nil
}

// GetUserID returns the authenticated user id, or "" when the request is anonymous.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == RoleAdmin
}
