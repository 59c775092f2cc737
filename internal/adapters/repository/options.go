package repository

import (
	"time"

	"github.com/okian/comfortloop/pkg/logger"
)

// Option configures a store.
type Option func(*options)

type options struct {
	log logger.Logger
	now func() time.Time
}

func newOptions(name string, opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named(name)
	}
	return o
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
