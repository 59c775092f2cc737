package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
)

// client wraps http.Client with JSON helpers.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// submitSamples posts samples with a pool of cfg.Workers submitters. With an
// interval set, a single submitter paces the samples.
func submitSamples(ctx context.Context, cfg Config, c *client, samples []types.HealthSample, stats *Stats) {
	log := logger.Named("simulate")
	log.Info(ctx, "submitting samples", logger.Int("samples", len(samples)), logger.Int("workers", cfg.Workers))

	var mu sync.Mutex
	record := func(res types.HealthResult, err error) {
		mu.Lock()
		defer mu.Unlock()
		stats.Submitted++
		switch {
		case err != nil:
			stats.Failed++
		case res.Status == types.SampleDuplicate:
			stats.Duplicate++
		default:
			stats.Successful++
			stats.Classifications[res.Classification]++
		}
	}

	ch := make(chan types.HealthSample, cfg.Workers*2)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range ch {
				res, err := submitSample(ctx, c, s)
				if err != nil {
					log.Warn(ctx, "sample rejected", logger.String("sample_id", s.SampleID), logger.Error(err))
				}
				record(res, err)
			}
		}()
	}

	go func() {
		defer close(ch)
		for i, s := range samples {
			if i > 0 && cfg.Interval > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(cfg.Interval):
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- s:
			}
		}
	}()

	wg.Wait()
}

func submitSample(ctx context.Context, c *client, s types.HealthSample) (types.HealthResult, error) {
	var res types.HealthResult
	status, err := c.do(ctx, http.MethodPost, "/healthdata", s, &res)
	if err != nil {
		return res, err
	}
	if status != http.StatusOK {
		return res, fmt.Errorf("unexpected status %d", status)
	}
	return res, nil
}
