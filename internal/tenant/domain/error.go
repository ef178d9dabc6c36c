package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("tenant not found")
	ErrTaxIDExists     = errors.New("tax id already registered")
	ErrInvalidRequest  = errors.New("invalid tenant request")
	ErrNotPaused       = errors.New("tenant is not paused")
	ErrAlreadyCanceled = errors.New("tenant already cancelled")
	ErrJobRunning      = errors.New("job already running")
)

// UnlockCooldownError rejects a temporary unlock requested before the
// cooldown elapsed. DaysRemaining is reported to the caller.
type UnlockCooldownError struct {
	DaysRemaining int
}

func (e *UnlockCooldownError) Error() string {
	return fmt.Sprintf("temporary unlock available in %d days", e.DaysRemaining)
}
