package service

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/comfortloop/internal/adapters/device"
	"github.com/okian/comfortloop/pkg/logger"
)

// Device actions accepted by ControlDevice.
const ActionSetTemperature = "set_temperature"

// DeviceState reads the air conditioner.
func (s *Service) DeviceState(ctx context.Context) (device.State, error) {
	return s.readDevice(ctx)
}

// ControlDevice applies a manual command. Only set_temperature is supported.
// An empty unit uses the configured one.
func (s *Service) ControlDevice(ctx context.Context, action string, target float64, unit string) error {
	if action != ActionSetTemperature {
		return fmt.Errorf("%w: unsupported action %q", ErrInvalidCommand, action)
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return fmt.Errorf("%w: target temperature must be finite", ErrInvalidCommand)
	}
	if unit == "" {
		unit = s.unit
	}
	u, err := device.NormalizeUnit(unit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if err := s.command(ctx, target, u); err != nil {
		return err
	}
	s.logger.Info(ctx, "manual setpoint applied", logger.Float64("target", target), logger.String("unit", u))
	return nil
}
