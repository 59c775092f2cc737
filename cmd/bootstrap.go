package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/okian/comfortloop/internal/adapters/device"
	"github.com/okian/comfortloop/internal/adapters/inference"
	"github.com/okian/comfortloop/internal/adapters/repository"
	service "github.com/okian/comfortloop/internal/app"
	"github.com/okian/comfortloop/internal/config"
	"github.com/okian/comfortloop/pkg/logger"
)

// components are the collaborators opened from config. close releases them.
type components struct {
	store     repository.Store
	device    device.Device
	predictor inference.Predictor
}

func (c *components) close() error {
	var errs []error
	if c.device != nil {
		errs = append(errs, c.device.Close())
	}
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	return errors.Join(errs...)
}

// openComponents opens the store, device and model selected by cfg. A missing
// model file is not fatal; health samples are then refused.
func openComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	log := logger.Named("bootstrap")
	c := &components{}

	st, err := repository.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	c.store = st

	dev, err := device.Open(ctx, device.Config{
		Driver: cfg.Device.Driver,
		MQTT: device.MQTTConfig{
			Broker:       cfg.Device.MQTT.Broker,
			ClientID:     cfg.Device.MQTT.ClientID,
			Username:     cfg.Device.MQTT.Username,
			Password:     cfg.Device.MQTT.Password,
			StateTopic:   cfg.Device.MQTT.StateTopic,
			CommandTopic: cfg.Device.MQTT.CommandTopic,
		},
		HTTP: device.HTTPConfig{
			BaseURL:  cfg.Device.HTTP.BaseURL,
			DeviceID: cfg.Device.HTTP.DeviceID,
			Token:    cfg.Device.HTTP.Token,
		},
	})
	if err != nil {
		_ = c.close()
		return nil, fmt.Errorf("open device: %w", err)
	}
	c.device = dev

	if cfg.Model.Path != "" {
		m, err := inference.LoadLinearModel(cfg.Model.Path)
		switch {
		case err == nil:
			c.predictor = m
			log.Info(ctx, "model loaded", logger.String("path", cfg.Model.Path), logger.String("model", m.Name()))
		case errors.Is(err, fs.ErrNotExist):
			log.Warn(ctx, "model file not found; health samples disabled (run `comfortloop model init`)",
				logger.String("path", cfg.Model.Path))
		default:
			_ = c.close()
			return nil, fmt.Errorf("load model: %w", err)
		}
	}
	return c, nil
}

// newService builds the service on top of opened components.
func newService(cfg *config.Config, c *components) *service.Service {
	opts := append(service.OptionsFromConfig(cfg),
		service.WithStore(c.store),
		service.WithDevice(c.device),
		service.WithLogger(logger.Named("service")),
	)
	if c.predictor != nil {
		opts = append(opts, service.WithPredictor(c.predictor))
	}
	return service.New(opts...)
}
