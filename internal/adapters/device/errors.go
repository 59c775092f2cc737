package device

import "errors"

// Sentinel kinds for device errors.
var (
	ErrUnavailable    = errors.New("device unavailable")
	ErrNoState        = errors.New("device reported no state")
	ErrMalformedState = errors.New("malformed device state")
	ErrInvalidUnit    = errors.New("invalid temperature unit")
	ErrRejected       = errors.New("device rejected command")
)
