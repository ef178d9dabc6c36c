package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Billing-policy login rejections. Distinct from ErrInvalidCredentials
	// so the client can render the account-state explanation.
	ErrAccountPending   = errors.New("account pending approval")
	ErrAccountPaused    = errors.New("account paused")
	ErrAccountCancelled = errors.New("account cancelled")
)
