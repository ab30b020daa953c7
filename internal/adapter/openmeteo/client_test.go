package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const forecastBody = `{
  "latitude": 52.52, "longitude": 13.41, "timezone": "Europe/Berlin",
  "current": {"time": "2024-04-26T15:00", "temperature_2m": 12.3, "relative_humidity_2m": 71,
              "wind_speed_10m": 3.4, "weather_code": 3},
  "daily": {"time": ["2024-04-26"], "temperature_2m_max": [14.1], "temperature_2m_min": [6.8],
            "weather_code": [61]}
}`

func testClient(baseURL string, timeout time.Duration) *Client {
	c := NewClient(timeout, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = baseURL
	return c
}

func TestForecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "52.5170365", q.Get("latitude"))
		assert.Equal(t, "13.3888599", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code", q.Get("current"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,weather_code", q.Get("daily"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.Equal(t, "auto", q.Get("timezone"))
		assert.Equal(t, "1", q.Get("forecast_days"))
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, time.Second).Forecast(context.Background(), "52.5170365", "13.3888599")
	require.NoError(t, err)

	want := domain.WeatherPayload{
		Current: &domain.CurrentWeather{Temperature: 12.3, Humidity: 71, WindSpeed: 3.4, WeatherCode: 3},
		Daily: &domain.DailyWeather{
			TemperatureMax: []float64{14.1},
			TemperatureMin: []float64{6.8},
			WeatherCode:    []int{61},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestForecast_InBandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°. Given: 123.0."}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Forecast(context.Background(), "123.0", "0")

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Latitude must be in range of -90 to 90°. Given: 123.0.", ue.Reason)

	var fe *domain.FetchError
	assert.NotErrorAs(t, err, &fe)
}

func TestForecast_StatusWithoutInBandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Forecast(context.Background(), "1", "2")

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CauseNetwork, fe.Cause)
}

func TestForecast_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current": [`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, time.Second).Forecast(context.Background(), "1", "2")

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CauseParse, fe.Cause)
}

func TestForecast_PartialCurrentIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":1.0}}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, time.Second).Forecast(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Nil(t, got.Current)
	assert.Nil(t, got.Daily)
}

func TestForecast_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Forecast(context.Background(), "1", "2")

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CauseNetwork, fe.Cause)
}
