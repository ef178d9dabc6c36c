package domain

import "errors"

var (
	ErrNotFound       = errors.New("sale not found")
	ErrInvalidRequest = errors.New("invalid sale request")
	ErrEmptySale      = errors.New("sale has no items")
)
