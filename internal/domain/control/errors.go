package control

import "errors"

// Sentinel kinds returned by Gate.TryBegin.
var (
	ErrDebounced = errors.New("minimum adjustment interval has not elapsed")
	ErrInFlight  = errors.New("another adjustment cycle is running")
)
