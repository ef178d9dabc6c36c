// Package token mints and verifies the signed session token. The token is
// the only carrier of role and tenant identity between requests; claims are
// snapshots and never change without re-authentication.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/varejotech/balcao/internal/tenantctx"
)

// Lifetime is the absolute token lifetime. There is no sliding renewal;
// clients re-mint through the refresh endpoint.
const Lifetime = 8 * time.Hour

type Config struct {
	SigningKey string
}

// SessionClaims is the wire shape of the session token payload.
type SessionClaims struct {
	Email                string     `json:"email"`
	Role                 string     `json:"role"`
	TenantID             string     `json:"tenant_id,omitempty"`
	TenantName           string     `json:"tenant_name,omitempty"`
	SubscriptionStatus   string     `json:"subscription_status,omitempty"`
	SubscriptionDueDate  *time.Time `json:"subscription_due_date,omitempty"`
	TemporaryUnlockUntil *time.Time `json:"temporary_unlock_until,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	cfg   Config
	clock func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg, clock: time.Now}
}

// NewIssuerWithClock is used by tests to control expiry.
func NewIssuerWithClock(cfg Config, clock func() time.Time) *Issuer {
	return &Issuer{cfg: cfg, clock: clock}
}

// Mint signs a token for the given claims, expiring after Lifetime.
func (i *Issuer) Mint(claims tenantctx.Claims) (string, time.Time, error) {
	if strings.TrimSpace(i.cfg.SigningKey) == "" {
		return "", time.Time{}, errors.New("token signing key not configured")
	}

	now := i.clock().UTC()
	expiresAt := now.Add(Lifetime)

	payload := SessionClaims{
		Email:                claims.Email,
		Role:                 string(claims.Role),
		TenantName:           claims.TenantName,
		SubscriptionStatus:   claims.SubscriptionStatus,
		SubscriptionDueDate:  claims.SubscriptionDueDate,
		TemporaryUnlockUntil: claims.TemporaryUnlockUntil,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if claims.TenantID != 0 {
		payload.TenantID = claims.TenantID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(i.cfg.SigningKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses the token and returns the carried claims. Any parse or
// signature failure yields nil claims; the caller treats that as
// "unauthenticated", not as a fault.
func (i *Issuer) Verify(raw string) (*tenantctx.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(i.cfg.SigningKey), nil
	}, jwt.WithTimeFunc(i.clock))
	if err != nil {
		return nil, err
	}

	payload, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := snowflake.ParseString(payload.Subject)
	if err != nil {
		return nil, err
	}

	claims := &tenantctx.Claims{
		UserID:               userID,
		Email:                payload.Email,
		Role:                 tenantctx.Role(payload.Role),
		TenantName:           payload.TenantName,
		SubscriptionStatus:   payload.SubscriptionStatus,
		SubscriptionDueDate:  payload.SubscriptionDueDate,
		TemporaryUnlockUntil: payload.TemporaryUnlockUntil,
	}
	if strings.TrimSpace(payload.TenantID) != "" {
		tenantID, err := snowflake.ParseString(payload.TenantID)
		if err != nil {
			return nil, err
		}
		claims.TenantID = tenantID
	}
	if !claims.Role.Valid() {
		return nil, errors.New("unknown role")
	}

	return claims, nil
}
