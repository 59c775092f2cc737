package device

import (
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/comfortloop/pkg/logger"
)

// Option configures a device adapter.
type Option func(*options)

type options struct {
	log         logger.Logger
	httpClient  *http.Client
	mqttClient  mqtt.Client
	maxStateAge time.Duration
	now         func() time.Time
}

func newOptions(name string, opts []Option) options {
	o := options{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxStateAge: 10 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named(name)
	}
	return o
}

// WithLogger sets the adapter logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithHTTPClient replaces the HTTP client of the cloud adapter.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithMQTTClient uses an existing MQTT client instead of dialing the broker.
func WithMQTTClient(c mqtt.Client) Option {
	return func(o *options) {
		if c != nil {
			o.mqttClient = c
		}
	}
}

// WithMaxStateAge sets how old a retained MQTT state may be before it counts as unavailable.
// Zero disables the check.
func WithMaxStateAge(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.maxStateAge = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
