package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyConfigured = errors.New("comfort range already configured")
	ErrInvalidLimit      = errors.New("invalid limit")
	ErrClosed            = errors.New("store closed")
)
