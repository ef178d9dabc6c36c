// Package tenantctx carries the authenticated request identity through
// context. Claims are immutable snapshots taken from the session token;
// nothing downstream may mutate them.
package tenantctx

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the fixed set of user roles.
type Role string

const (
	RoleMaster  Role = "master"
	RoleAdmin   Role = "admin"
	RoleGerente Role = "gerente"
	RoleCaixa   Role = "caixa"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleMaster, RoleAdmin, RoleGerente, RoleCaixa:
		return true
	default:
		return false
	}
}

// Claims is the identity and billing snapshot minted into the session token.
type Claims struct {
	UserID               snowflake.ID
	Email                string
	Role                 Role
	TenantID             snowflake.ID // zero for master
	TenantName           string
	SubscriptionStatus   string
	SubscriptionDueDate  *time.Time
	TemporaryUnlockUntil *time.Time
}

type claimsKey struct{}

// WithClaims stores the claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the request claims, if present.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// TenantID returns the tenant the request is scoped to.
func TenantID(ctx context.Context) (snowflake.ID, bool) {
	claims, ok := FromContext(ctx)
	if !ok || claims.TenantID == 0 {
		return 0, false
	}
	return claims.TenantID, true
}
