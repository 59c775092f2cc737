package inference

import "errors"

var (
	// ErrModelNotLoaded is returned when no model is available for prediction.
	ErrModelNotLoaded = errors.New("inference: model not loaded")
	// ErrInvalidFeatures is returned for physiologically impossible inputs.
	ErrInvalidFeatures = errors.New("inference: invalid features")
	// ErrInvalidModel is returned when a model file cannot be decoded or has no coefficients.
	ErrInvalidModel = errors.New("inference: invalid model")
)
