package timed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

const defaultClientTimeout = 10 * time.Second

// Client is a typed HTTP client for the daemon API.
type Client struct {
	resty *resty.Client
}

// NewClient builds a client against the daemon base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultClientTimeout)
	return &Client{resty: rc}, nil
}

// Health probes the daemon health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.resty == nil {
		return errors.New("client is not configured")
	}
	resp, err := c.resty.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("health http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// StableTime fetches the cached snapshot, reporting false when the daemon
// holds none.
func (c *Client) StableTime(ctx context.Context) (timepoint.Snapshot, bool, error) {
	if c == nil || c.resty == nil {
		return timepoint.Snapshot{}, false, errors.New("client is not configured")
	}
	var values map[string]float64
	resp, err := c.resty.R().SetContext(ctx).SetResult(&values).Get("/v1/stable-time")
	if err != nil {
		return timepoint.Snapshot{}, false, fmt.Errorf("stable time request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return timepoint.Snapshot{}, false, nil
	}
	if resp.IsError() {
		return timepoint.Snapshot{}, false, fmt.Errorf("stable time http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	snap, ok := timepoint.FromMapping(values)
	if !ok {
		return timepoint.Snapshot{}, false, errors.New("daemon returned a malformed mapping")
	}
	return snap, true, nil
}

// SetStableTime stores a snapshot through the daemon.
func (c *Client) SetStableTime(ctx context.Context, snap timepoint.Snapshot) error {
	if c == nil || c.resty == nil {
		return errors.New("client is not configured")
	}
	resp, err := c.resty.R().SetContext(ctx).SetBody(snap.Mapping()).Put("/v1/stable-time")
	if err != nil {
		return fmt.Errorf("set stable time request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("set stable time http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// Now fetches the projected stable time, reporting false when the daemon
// holds no snapshot.
func (c *Client) Now(ctx context.Context) (time.Time, bool, error) {
	if c == nil || c.resty == nil {
		return time.Time{}, false, errors.New("client is not configured")
	}
	var payload nowResponse
	resp, err := c.resty.R().SetContext(ctx).SetResult(&payload).Get("/v1/stable-time/now")
	if err != nil {
		return time.Time{}, false, fmt.Errorf("now request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return time.Time{}, false, nil
	}
	if resp.IsError() {
		return time.Time{}, false, fmt.Errorf("now http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	parsed, err := time.Parse(time.RFC3339Nano, payload.StableTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse stable time %q: %w", payload.StableTime, err)
	}
	return parsed, true, nil
}
