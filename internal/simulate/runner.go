package simulate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
)

// Run checks the service, submits generated samples and optionally requests a
// control cycle.
func Run(ctx context.Context, config Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := logger.Named("simulate")
	stats := &Stats{StartTime: time.Now(), Classifications: make(map[string]int)}

	log.Info(ctx, "starting simulation",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("samples", cfg.Samples),
		logger.String("scenario", cfg.Scenario),
		logger.Duration("interval", cfg.Interval))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, c); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	samples, err := Generate(cfg.Samples, cfg.Scenario, cfg.Profile, cfg.Seed)
	if err != nil {
		return stats, fmt.Errorf("sample generation failed: %w", err)
	}
	stats.Generated = len(samples)

	submitSamples(ctx, cfg, c, samples, stats)

	if cfg.Tick {
		var report types.CycleReport
		status, err := c.do(ctx, http.MethodPost, "/control/tick", nil, &report)
		if err != nil {
			return stats, fmt.Errorf("control tick failed: %w", err)
		}
		if status != http.StatusOK {
			return stats, fmt.Errorf("control tick failed with status %d", status)
		}
		stats.Cycle = &report
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, c *client) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	fields := []logger.Field{
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("hot", stats.Classifications["HOT"]),
		logger.Int("good", stats.Classifications["GOOD"]),
		logger.Int("cold", stats.Classifications["COLD"]),
		logger.Duration("duration", stats.Duration),
	}
	if stats.Cycle != nil {
		fields = append(fields,
			logger.String("cycle_outcome", string(stats.Cycle.Outcome)),
			logger.String("cycle_action", stats.Cycle.ActionTaken))
	}
	log.Info(ctx, "simulation finished", fields...)
}
