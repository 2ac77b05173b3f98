package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/averyn/modlaunch"
)

// Client provides HTTP access to a running modlaunch daemon.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8900/api",
		Timeout: 10 * time.Second,
	}
}

// New creates a new modlaunch API client.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  config.Logger,
	}
}

// IsReachable checks if the daemon is running and answering.
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

type launchRequest struct {
	Name         string                  `json:"name,omitempty"`
	Mode         string                  `json:"mode"`
	Installation *modlaunch.Installation `json:"installation,omitempty"`
}

// Launch starts a configured installation by name.
func (c *Client) Launch(ctx context.Context, name string, mode modlaunch.Mode) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/launch", launchRequest{Name: name, Mode: string(mode)})
}

// LaunchInstallation starts an installation described inline, without
// requiring it to appear in the daemon's configuration.
func (c *Client) LaunchInstallation(ctx context.Context, inst modlaunch.Installation, mode modlaunch.Mode) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/launch", launchRequest{Mode: string(mode), Installation: &inst})
}

// Stop stops a configured installation by name.
func (c *Client) Stop(ctx context.Context, name string) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/stop?name="+url.QueryEscape(name), nil)
}

// StopRoot stops whatever group is tracked under an installation root.
func (c *Client) StopRoot(ctx context.Context, root string) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/stop?root="+url.QueryEscape(root), nil)
}

// Status fetches the tracked group for one installation name.
func (c *Client) Status(ctx context.Context, name string) (modlaunch.GroupStatus, error) {
	var st modlaunch.GroupStatus
	err := c.getJSON(ctx, "/status?name="+url.QueryEscape(name), &st)
	return st, err
}

// Statuses fetches every tracked group.
func (c *Client) Statuses(ctx context.Context) ([]modlaunch.GroupStatus, error) {
	var sts []modlaunch.GroupStatus
	err := c.getJSON(ctx, "/status", &sts)
	return sts, err
}

// Installations fetches the daemon's configured installations.
func (c *Client) Installations(ctx context.Context) ([]modlaunch.Installation, error) {
	var insts []modlaunch.Installation
	err := c.getJSON(ctx, "/installations", &insts)
	return insts, err
}

// LaunchProfile starts every member of a configured profile.
func (c *Client) LaunchProfile(ctx context.Context, name string) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/profiles/launch?name="+url.QueryEscape(name), nil)
}

// StopProfile stops every member of a configured profile.
func (c *Client) StopProfile(ctx context.Context, name string) (modlaunch.Outcome, error) {
	return c.postOutcome(ctx, "/profiles/stop?name="+url.QueryEscape(name), nil)
}

// postOutcome sends a POST and decodes the outcome the daemon returns for
// both accepted and refused operations. Refusals that carry no outcome body
// surface as errors.
func (c *Client) postOutcome(ctx context.Context, path string, body any) (modlaunch.Outcome, error) {
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return modlaunch.Outcome{}, err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rdr)
	if err != nil {
		return modlaunch.Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return modlaunch.Outcome{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Accepted and refused operations both answer with an outcome body;
	// request-level problems answer with {"error": ...}.
	var reply struct {
		modlaunch.Outcome
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return modlaunch.Outcome{}, fmt.Errorf("daemon returned %s with undecodable body: %w", resp.Status, err)
	}
	if reply.Error != "" {
		return modlaunch.Outcome{}, fmt.Errorf("API error: %s", reply.Error)
	}
	return reply.Outcome, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
			return fmt.Errorf("daemon returned %s", resp.Status)
		}
		return fmt.Errorf("API error: %s", errorResp.Error)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
