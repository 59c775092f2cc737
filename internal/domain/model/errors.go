package model

import "errors"

// Sentinel error kinds for domain validation.
var (
	ErrUnknownClassification = errors.New("unknown classification")
	ErrInvalidComfortRange   = errors.New("invalid comfort range")
	ErrInvalidProfile        = errors.New("invalid profile")
	ErrUnknownVote           = errors.New("unknown comfort vote")
)
