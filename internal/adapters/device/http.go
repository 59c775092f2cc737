package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPConfig addresses a cloud air-conditioner API.
type HTTPConfig struct {
	BaseURL  string
	DeviceID string
	Token    string
}

// HTTPDevice reads state with GET {base}/devices/{id}/state and commands with
// POST {base}/devices/{id}/control.
type HTTPDevice struct {
	cfg  HTTPConfig
	opts options
}

// maxBodySize caps device responses.
const maxBodySize = 1 << 20

// NewHTTPDevice validates the configuration and builds the adapter.
func NewHTTPDevice(cfg HTTPConfig, opts ...Option) (*HTTPDevice, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid device base url: %w", err)
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPDevice{cfg: cfg, opts: newOptions("device.http", opts)}, nil
}

func (d *HTTPDevice) Name() string { return "http" }

func (d *HTTPDevice) endpoint(op string) string {
	return d.cfg.BaseURL + "/devices/" + url.PathEscape(d.cfg.DeviceID) + "/" + op
}

func (d *HTTPDevice) do(ctx context.Context, method, op string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.endpoint(op), r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}

	resp, err := d.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, op, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", ErrRejected, method, op, resp.StatusCode, bytes.TrimSpace(data))
	}
	return data, nil
}

// ReadState fetches and decodes the device state.
func (d *HTTPDevice) ReadState(ctx context.Context) (State, error) {
	data, err := d.do(ctx, http.MethodGet, "state", nil)
	if err != nil {
		return State{}, err
	}
	return ParseState(data)
}

// SetTargetTemperature posts a setpoint command.
func (d *HTTPDevice) SetTargetTemperature(ctx context.Context, value float64, unit string) error {
	unit, err := NormalizeUnit(unit)
	if err != nil {
		return err
	}
	payload, err := encodeCommand(value, unit)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	_, err = d.do(ctx, http.MethodPost, "control", payload)
	return err
}

func (d *HTTPDevice) Close() error {
	d.opts.httpClient.CloseIdleConnections()
	return nil
}
