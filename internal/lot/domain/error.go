package domain

import "errors"

var (
	ErrNotFound        = errors.New("lot not found")
	ErrLotNumberExists = errors.New("lot number already registered for product")
	ErrInvalidRequest  = errors.New("invalid lot request")
)
