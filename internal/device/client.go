package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	apiKeyHeader   = "X-Api-Key"
	maxBodyBytes   = 1 << 16
)

// Config configures the cloud gateway client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient validates the base URL and returns a gateway client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid device base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: u,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// levelResponse is the body of the fan/power reads.
type levelResponse struct {
	Result int `json:"Result"`
	Error  int `json:"Error"`
}

type igniteRequest struct {
	Power int `json:"power"`
}

type levelRequest struct {
	Level int `json:"level"`
}

func (c *Client) GetStatus(ctx context.Context) (Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &st); err != nil {
		return Status{}, fmt.Errorf("get status: %w", err)
	}
	if st.Error != 0 && st.Description == "" {
		return Status{}, fmt.Errorf("get status: %w (code %d)", ErrDeviceError, st.Error)
	}
	return st, nil
}

func (c *Client) GetFanLevel(ctx context.Context) (int, error) {
	return c.getLevel(ctx, "/fan")
}

func (c *Client) GetPowerLevel(ctx context.Context) (int, error) {
	return c.getLevel(ctx, "/power")
}

func (c *Client) Ignite(ctx context.Context, power int) error {
	if err := ValidatePower(power); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/ignite", igniteRequest{Power: power}, nil); err != nil {
		return fmt.Errorf("ignite: %w", err)
	}
	return nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/shutdown", nil, nil); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (c *Client) SetPowerLevel(ctx context.Context, level int) error {
	if err := ValidatePower(level); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/power", levelRequest{Level: level}, nil); err != nil {
		return fmt.Errorf("set power: %w", err)
	}
	return nil
}

func (c *Client) SetFanLevel(ctx context.Context, level int) error {
	if err := ValidateFan(level); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/fan", levelRequest{Level: level}, nil); err != nil {
		return fmt.Errorf("set fan: %w", err)
	}
	return nil
}

func (c *Client) getLevel(ctx context.Context, path string) (int, error) {
	var lr levelResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &lr); err != nil {
		return 0, fmt.Errorf("get %s: %w", strings.TrimPrefix(path, "/"), err)
	}
	if lr.Error != 0 {
		return 0, fmt.Errorf("get %s: %w (code %d)", strings.TrimPrefix(path, "/"), ErrDeviceError, lr.Error)
	}
	return lr.Result, nil
}

// do performs a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	u := *c.baseURL
	u.Path = u.Path + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
