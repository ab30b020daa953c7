// Package openmeteo reads current conditions and today's temperature range
// from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const service = "open-meteo"

// Client implements domain.WeatherSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.open-meteo.com",
		metrics:    metrics,
		logger:     logger,
	}
}

// Forecast fetches current conditions plus today's min/max in one call.
// Coordinates are passed through verbatim.
func (c *Client) Forecast(ctx context.Context, latitude, longitude string) (domain.WeatherPayload, error) {
	params := url.Values{
		"latitude":        {latitude},
		"longitude":       {longitude},
		"current":         {"temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"},
		"daily":           {"temperature_2m_max,temperature_2m_min,weather_code"},
		"wind_speed_unit": {"ms"},
		"timezone":        {"auto"},
		"forecast_days":   {"1"},
	}

	start := time.Now()
	payload, err := c.doRequest(ctx, c.baseURL+"/v1/forecast?"+params.Encode())
	if err != nil {
		c.metrics.ObserveUpstream(service, observability.OutcomeError, start)
		c.logger.Warn("weather request failed", "latitude", latitude, "longitude", longitude, "error", err)
		return domain.WeatherPayload{}, err
	}
	c.metrics.ObserveUpstream(service, observability.OutcomeSuccess, start)
	return payload, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherPayload{}, domain.NetworkError(service, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherPayload{}, domain.NetworkError(service, err)
	}
	defer resp.Body.Close()

	// Open-Meteo reports bad requests in-band with a 400 status, so the
	// body is decoded before the status is checked.
	var fr forecastResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&fr)
	if decodeErr == nil && fr.Error {
		return domain.WeatherPayload{}, &domain.UpstreamError{Service: service, Reason: fr.Reason}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.WeatherPayload{}, domain.NetworkError(service, fmt.Errorf("status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return domain.WeatherPayload{}, domain.ParseError(service, fmt.Errorf("decode response: %w", decodeErr))
	}

	return fr.toDomain(), nil
}

// Open-Meteo API response types.

type forecastResponse struct {
	Error   bool          `json:"error"`
	Reason  string        `json:"reason"`
	Current *currentBlock `json:"current"`
	Daily   *dailyBlock   `json:"daily"`
}

type currentBlock struct {
	Temperature *float64 `json:"temperature_2m"`
	Humidity    *float64 `json:"relative_humidity_2m"`
	WindSpeed   *float64 `json:"wind_speed_10m"`
	WeatherCode *int     `json:"weather_code"`
}

type dailyBlock struct {
	TemperatureMax []float64 `json:"temperature_2m_max"`
	TemperatureMin []float64 `json:"temperature_2m_min"`
	WeatherCode    []int     `json:"weather_code"`
}

// toDomain maps the response; a current block missing any field is dropped
// so callers see it as absent rather than as zero readings.
func (r forecastResponse) toDomain() domain.WeatherPayload {
	var p domain.WeatherPayload
	if cur := r.Current; cur != nil && cur.Temperature != nil && cur.Humidity != nil &&
		cur.WindSpeed != nil && cur.WeatherCode != nil {
		p.Current = &domain.CurrentWeather{
			Temperature: *cur.Temperature,
			Humidity:    *cur.Humidity,
			WindSpeed:   *cur.WindSpeed,
			WeatherCode: *cur.WeatherCode,
		}
	}
	if r.Daily != nil {
		p.Daily = &domain.DailyWeather{
			TemperatureMax: r.Daily.TemperatureMax,
			TemperatureMin: r.Daily.TemperatureMin,
			WeatherCode:    r.Daily.WeatherCode,
		}
	}
	return p
}
