package domain

import "errors"

var (
	ErrNotFound       = errors.New("product not found")
	ErrSKUExists      = errors.New("sku already registered")
	ErrInvalidRequest = errors.New("invalid product request")
)
