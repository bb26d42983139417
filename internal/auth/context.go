package auth

import (
	"context"
)

type ctxKey string

const callerKey ctxKey = "caller"

// Role is the closed set of roles the engine understands. Anything else on a
// token is rejected at the middleware.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStaff, RoleManager, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Caller is the authenticated identity every engine call receives by value.
// It is built once per request by the middleware and never recovered from
// ambient state inside the services.
type Caller struct {
	UserID   string
	TenantID string
	Role     Role
}

func (c Caller) Managerial() bool {
	return c.Role == RoleManager || c.Role == RoleAdmin
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func CallerFrom(ctx context.Context) Caller {
	if v, ok := ctx.Value(callerKey).(Caller); ok {
		return v
	}
	return Caller{}
}
