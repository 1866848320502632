package auth

import (
	"context"
	"slices"
	"time"

	"campusreport/backend/internal/models"
)

// Session is the caller identity decoded once at the HTTP boundary and passed to services.
type Session struct {
	UserID    string
	Role      models.Role
	ExpiresAt time.Time
}

// HasRole reports whether the session role is in the allow-list.
func (s Session) HasRole(roles ...models.Role) bool {
	return slices.Contains(roles, s.Role)
}

func (s Session) IsSupervisor() bool {
	return s.Role.IsSupervisor()
}

type sessionKey struct{}

func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
