// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Store drivers.
const (
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Device drivers.
const (
	DeviceMQTT      = "mqtt"
	DeviceHTTP      = "http"
	DeviceSimulated = "simulated"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DedupeSize bounds the number of remembered health sample ids.
	DedupeSize int `koanf:"dedupe_size"`

	Control    ControlConfig    `koanf:"control"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Timeouts   TimeoutConfig    `koanf:"timeouts"`
	Store      StoreConfig      `koanf:"store"`
	Device     DeviceConfig     `koanf:"device"`
	Model      ModelConfig      `koanf:"model"`
}

// ControlConfig tunes the adjustment loop.
type ControlConfig struct {
	// Interval is the scheduler tick period.
	Interval time.Duration `koanf:"interval"`
	// MinInterval is the debounce window between decided cycles.
	MinInterval time.Duration `koanf:"min_interval"`
	// HistorySize is the number of most recent records the majority is taken over.
	HistorySize int `koanf:"history_size"`
	// Step is the setpoint change per adjustment in degrees.
	Step float64 `koanf:"step"`
	// ConvergenceTolerance is how close current must be to target before a new step.
	ConvergenceTolerance float64 `koanf:"convergence_tolerance"`
	// TargetHumidity triggers a humidity_check action when exceeded.
	TargetHumidity float64 `koanf:"target_humidity"`
	// SeedSetpointOnStart commands the range midpoint once at startup.
	SeedSetpointOnStart bool `koanf:"seed_setpoint_on_start"`
	// PersistState stores last_adjustment_time so restarts keep the debounce window.
	PersistState bool `koanf:"persist_state"`
}

// ClassifierConfig holds the skin-temperature thresholds.
type ClassifierConfig struct {
	ColdThreshold float64 `koanf:"cold_threshold"`
	HotThreshold  float64 `koanf:"hot_threshold"`
}

// TimeoutConfig bounds every collaborator call.
type TimeoutConfig struct {
	Device  time.Duration `koanf:"device"`
	Store   time.Duration `koanf:"store"`
	Predict time.Duration `koanf:"predict"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

// DeviceConfig selects the air-conditioner transport.
type DeviceConfig struct {
	Driver string           `koanf:"driver"`
	Unit   string           `koanf:"unit"`
	MQTT   MQTTDeviceConfig `koanf:"mqtt"`
	HTTP   HTTPDeviceConfig `koanf:"http"`
}

// MQTTDeviceConfig configures the MQTT device bridge.
type MQTTDeviceConfig struct {
	Broker       string `koanf:"broker"`
	ClientID     string `koanf:"client_id"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	StateTopic   string `koanf:"state_topic"`
	CommandTopic string `koanf:"command_topic"`
}

// HTTPDeviceConfig configures the cloud HTTP device API.
type HTTPDeviceConfig struct {
	BaseURL  string `koanf:"base_url"`
	DeviceID string `koanf:"device_id"`
	Token    string `koanf:"token"`
}

// ModelConfig points at the skin-temperature model file.
type ModelConfig struct {
	Path string `koanf:"path"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:   "info",
		Addr:       ":8000",
		DedupeSize: 10_000,
		Control: ControlConfig{
			Interval:             30 * time.Minute,
			MinInterval:          30 * time.Minute,
			HistorySize:          3,
			Step:                 0.5,
			ConvergenceTolerance: 0.5,
			TargetHumidity:       60.0,
			SeedSetpointOnStart:  true,
			PersistState:         true,
		},
		Classifier: ClassifierConfig{
			ColdThreshold: 34.5,
			HotThreshold:  35.6,
		},
		Timeouts: TimeoutConfig{
			Device:  10 * time.Second,
			Store:   5 * time.Second,
			Predict: 5 * time.Second,
		},
		Store: StoreConfig{
			Driver: StoreBolt,
			Path:   "comfortloop.db",
		},
		Device: DeviceConfig{
			Driver: DeviceSimulated,
			Unit:   "C",
			MQTT: MQTTDeviceConfig{
				Broker:       "tcp://localhost:1883",
				ClientID:     "comfortloop",
				StateTopic:   "comfortloop/ac/state",
				CommandTopic: "comfortloop/ac/set",
			},
		},
		Model: ModelConfig{
			Path: "model.json",
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Classifier.ColdThreshold >= c.Classifier.HotThreshold:
		return fmt.Errorf("%w: classifier.cold_threshold (%.2f) must be below classifier.hot_threshold (%.2f)",
			ErrInvalidConfig, c.Classifier.ColdThreshold, c.Classifier.HotThreshold)
	case c.Control.Interval <= 0:
		return fmt.Errorf("%w: control.interval must be positive", ErrInvalidConfig)
	case c.Control.MinInterval <= 0:
		return fmt.Errorf("%w: control.min_interval must be positive", ErrInvalidConfig)
	case c.Control.HistorySize < 1:
		return fmt.Errorf("%w: control.history_size must be at least 1", ErrInvalidConfig)
	case c.Control.Step <= 0:
		return fmt.Errorf("%w: control.step must be positive", ErrInvalidConfig)
	case c.Control.ConvergenceTolerance < 0:
		return fmt.Errorf("%w: control.convergence_tolerance must not be negative", ErrInvalidConfig)
	case c.Timeouts.Device <= 0 || c.Timeouts.Store <= 0 || c.Timeouts.Predict <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.DedupeSize < 1:
		return fmt.Errorf("%w: dedupe_size must be at least 1", ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case StoreBolt, StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	switch c.Device.Driver {
	case DeviceMQTT:
		if c.Device.MQTT.Broker == "" || c.Device.MQTT.StateTopic == "" || c.Device.MQTT.CommandTopic == "" {
			return fmt.Errorf("%w: device.mqtt needs broker, state_topic and command_topic", ErrInvalidConfig)
		}
	case DeviceHTTP:
		if c.Device.HTTP.BaseURL == "" || c.Device.HTTP.DeviceID == "" {
			return fmt.Errorf("%w: device.http needs base_url and device_id", ErrInvalidConfig)
		}
	case DeviceSimulated:
	default:
		return fmt.Errorf("%w: unknown device.driver %q", ErrInvalidConfig, c.Device.Driver)
	}
	return nil
}
