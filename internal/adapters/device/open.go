package device

import (
	"context"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverMQTT      = "mqtt"
	DriverHTTP      = "http"
	DriverSimulated = "simulated"
)

// Config selects and configures a device adapter.
type Config struct {
	Driver string
	MQTT   MQTTConfig
	HTTP   HTTPConfig
}

// Open builds the adapter selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, opts ...Option) (Device, error) {
	var (
		d   Device
		err error
	)
	switch cfg.Driver {
	case DriverMQTT:
		d, err = NewMQTTDevice(ctx, cfg.MQTT, opts...)
	case DriverHTTP:
		d, err = NewHTTPDevice(cfg.HTTP, opts...)
	case DriverSimulated:
		d = NewSimulated(24.0, 24.0, 50.0)
	default:
		return nil, fmt.Errorf("unknown device driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
