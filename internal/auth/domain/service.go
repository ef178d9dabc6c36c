package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/tenantctx"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Refresh re-mints a token for the same user with a fresh tenant
	// billing snapshot. Role and tenant never change without a new login.
	Refresh(ctx context.Context, userID snowflake.ID) (*LoginResult, error)
	// VerifyCredentials checks email/password without minting a token.
	// Used by the public unlock endpoint.
	VerifyCredentials(ctx context.Context, email, password string) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error
	GetUser(ctx context.Context, userID snowflake.ID) (*User, error)
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token              string
	ExpiresAt          time.Time
	Claims             tenantctx.Claims
	MustChangePassword bool
}

type CreateUserRequest struct {
	TenantID           snowflake.ID
	Name               string
	Email              string
	Password           string
	Role               tenantctx.Role
	MustChangePassword bool
}
