// Package weather fetches the local forecast cached for the dashboard.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stove_automation/internal/models"
)

var ErrEmptyForecast = errors.New("forecast has no current data")

// Client queries an Open-Meteo compatible forecast endpoint.
type Client struct {
	baseURL   string
	latitude  float64
	longitude float64
	http      *http.Client
	now       func() time.Time
}

func NewClient(baseURL string, latitude, longitude float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		latitude:  latitude,
		longitude: longitude,
		http:      &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

type forecastResponse struct {
	Current *struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Max []float64 `json:"temperature_2m_max"`
		Min []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Current returns today's conditions and min/max.
func (c *Client) Current(ctx context.Context) (models.WeatherSnapshot, error) {
	q := url.Values{
		"latitude":      {strconv.FormatFloat(c.latitude, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(c.longitude, 'f', 4, 64)},
		"current":       {"temperature_2m,weather_code,wind_speed_10m"},
		"daily":         {"temperature_2m_max,temperature_2m_min"},
		"forecast_days": {"1"},
		"timezone":      {"auto"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("request forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.WeatherSnapshot{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("decode forecast: %w", err)
	}
	if payload.Current == nil {
		return models.WeatherSnapshot{}, ErrEmptyForecast
	}

	snap := models.WeatherSnapshot{
		Temperature: payload.Current.Temperature,
		WeatherCode: payload.Current.WeatherCode,
		WindSpeed:   payload.Current.WindSpeed,
		FetchedAt:   c.now().UnixMilli(),
	}
	if len(payload.Daily.Max) > 0 {
		snap.TodayMax = payload.Daily.Max[0]
	}
	if len(payload.Daily.Min) > 0 {
		snap.TodayMin = payload.Daily.Min[0]
	}
	return snap, nil
}
