package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrInvalidSample     = errors.New("invalid health sample")
	ErrPredictionFailed  = errors.New("skin temperature prediction failed")
	ErrDeviceUnavailable = errors.New("air conditioner unavailable")
	ErrNoDevice          = errors.New("no air conditioner configured")
	ErrInvalidCommand    = errors.New("invalid device command")
	ErrNotStarted        = errors.New("service not started")
)
