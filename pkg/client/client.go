// Package client is the Go client of the coordination API. Joining hosts use
// it to register themselves and fetch the network view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// DefaultTimeout bounds every request when no explicit timeout is set.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx reply from the coordinator.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to one coordination server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithToken attaches a bearer token, required for admin operations.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the coordinator at serverURL.
func New(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect registers the host and returns the updated record with the
// coordinator-stamped LastSeen.
func (c *Client) Connect(ctx context.Context, host mesh.Host) (*mesh.Host, error) {
	var updated mesh.Host
	if err := c.do(ctx, http.MethodPost, "/connect", host, &updated); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &updated, nil
}

// Disconnect removes the host at the given address. Disconnecting an absent
// address succeeds.
func (c *Client) Disconnect(ctx context.Context, address netip.Addr) error {
	body := struct {
		Address netip.Addr `json:"address"`
	}{Address: address}
	if err := c.do(ctx, http.MethodPost, "/disconnect", body, nil); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// Info fetches the current network snapshot.
func (c *Client) Info(ctx context.Context) (*mesh.Network, error) {
	var n mesh.Network
	if err := c.do(ctx, http.MethodGet, "/", nil, &n); err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	return &n, nil
}

// Events fetches the event log, most-recent-first.
func (c *Client) Events(ctx context.Context) ([]mesh.Event, error) {
	var resp struct {
		Events []mesh.Event `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/events", nil, &resp); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return resp.Events, nil
}

// Ping checks coordinator liveness.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/ping"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "pong" {
		return fmt.Errorf("ping: unexpected reply %q (%d)", body, resp.StatusCode)
	}
	return nil
}

// RemoveHost removes a host by name. Requires an admin token.
func (c *Client) RemoveHost(ctx context.Context, name string) error {
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.do(ctx, http.MethodPost, "/admin/remove-host", body, nil); err != nil {
		return fmt.Errorf("remove host: %w", err)
	}
	return nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &errResp); err != nil || errResp.Message == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
