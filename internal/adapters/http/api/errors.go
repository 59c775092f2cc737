package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors. Handlers wrap upstream errors in a Kind so the
// status code is decided in one place.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrInternal    = errors.New("internal error")
)

// Kind attaches an operation name and an API error kind to an upstream error.
type Kind struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns a Kind without an upstream cause.
func NewKind(op string, kind error) *Kind {
	return &Kind{Op: op, Kind: kind}
}

// WrapKind returns a Kind wrapping err.
func WrapKind(op string, kind, err error) *Kind {
	return &Kind{Op: op, Kind: kind, Err: err}
}

func (k *Kind) Error() string {
	if k.Err == nil {
		return fmt.Sprintf("%s: %v", k.Op, k.Kind)
	}
	return fmt.Sprintf("%s: %v", k.Op, k.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (k *Kind) Unwrap() []error {
	if k.Err == nil {
		return []error{k.Kind}
	}
	return []error{k.Kind, k.Err}
}
