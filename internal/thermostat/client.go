// Package thermostat talks to a Netatmo-style smart thermostat cloud API.
package thermostat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stove_automation/internal/models"

	"golang.org/x/oauth2"
)

var ErrNotConfigured = errors.New("thermostat not configured")

type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	HomeID       string
	StoveRoomID  string
	SyncSetpoint float64
	Timeout      time.Duration
}

// Client authenticates with a long-lived refresh token; the oauth2 transport
// renews access tokens on demand.
type Client struct {
	cfg  Config
	base *url.URL
	http *http.Client
	now  func() time.Time
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.HomeID == "" || cfg.RefreshToken == "" {
		return nil, ErrNotConfigured
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid thermostat base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	hc := oauth2.NewClient(ctx, oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}))
	hc.Timeout = cfg.Timeout

	return &Client{cfg: cfg, base: base, http: hc, now: time.Now}, nil
}

type homeStatusResponse struct {
	Body struct {
		Home struct {
			ID    string `json:"id"`
			Rooms []struct {
				ID           string   `json:"id"`
				Reachable    bool     `json:"reachable"`
				MeasuredTemp *float64 `json:"therm_measured_temperature"`
				SetpointTemp *float64 `json:"therm_setpoint_temperature"`
				SetpointMode string   `json:"therm_setpoint_mode"`
			} `json:"rooms"`
		} `json:"home"`
	} `json:"body"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HomeStatus returns the current per-room readings.
func (c *Client) HomeStatus(ctx context.Context) (models.ThermostatStatus, error) {
	q := url.Values{"home_id": {c.cfg.HomeID}}
	var resp homeStatusResponse
	if err := c.do(ctx, http.MethodGet, "/homestatus?"+q.Encode(), nil, &resp); err != nil {
		return models.ThermostatStatus{}, err
	}
	if resp.Error != nil {
		return models.ThermostatStatus{}, fmt.Errorf("homestatus: %d %s", resp.Error.Code, resp.Error.Message)
	}

	st := models.ThermostatStatus{UpdatedAt: c.now().UnixMilli()}
	for _, r := range resp.Body.Home.Rooms {
		st.Rooms = append(st.Rooms, models.RoomStatus{
			RoomID:      r.ID,
			Temperature: r.MeasuredTemp,
			Setpoint:    r.SetpointTemp,
			Reachable:   r.Reachable && r.MeasuredTemp != nil,
		})
	}
	return st, nil
}

// CalibrateValves asks every valve of the home to recalibrate.
func (c *Client) CalibrateValves(ctx context.Context) error {
	form := url.Values{"home_id": {c.cfg.HomeID}}
	return c.do(ctx, http.MethodPost, "/calibratevalves", form, nil)
}

// SyncStoveState puts the stove room on a low manual setpoint while the stove
// heats it, and hands it back to the home schedule when the stove stops.
func (c *Client) SyncStoveState(ctx context.Context, stoveOn bool) error {
	if c.cfg.StoveRoomID == "" {
		return nil
	}
	form := url.Values{
		"home_id": {c.cfg.HomeID},
		"room_id": {c.cfg.StoveRoomID},
	}
	if stoveOn {
		form.Set("mode", "manual")
		form.Set("temp", strconv.FormatFloat(c.cfg.SyncSetpoint, 'f', 1, 64))
	} else {
		form.Set("mode", "home")
	}
	return c.do(ctx, http.MethodPost, "/setroomthermpoint", form, nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
