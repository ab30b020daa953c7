package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const service = "nominatim"

// Client implements domain.Geocoder using the OpenStreetMap Nominatim search API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client. Nominatim's usage policy
// requires an identifying User-Agent.
func NewClient(userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://nominatim.openstreetmap.org",
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode returns the single best match for query, or domain.ErrNotFound.
func (c *Client) Geocode(ctx context.Context, query string) (domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Place{}, domain.ErrNotFound
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	start := time.Now()
	place, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.ObserveUpstream(service, observability.OutcomeEmpty, start)
	case err != nil:
		c.metrics.ObserveUpstream(service, observability.OutcomeError, start)
		c.logger.Warn("geocoding failed", "query", query, "error", err)
	default:
		c.metrics.ObserveUpstream(service, observability.OutcomeSuccess, start)
	}
	return place, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Place{}, domain.NetworkError(service, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Place{}, domain.NetworkError(service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Place{}, domain.NetworkError(service, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Place{}, domain.ParseError(service, fmt.Errorf("decode response: %w", err))
	}
	if len(results) == 0 {
		return domain.Place{}, domain.ErrNotFound
	}

	r := results[0]
	if r.Lat == "" || r.Lon == "" || r.DisplayName == "" {
		return domain.Place{}, domain.ParseError(service, errors.New("result is missing lat, lon or display_name"))
	}
	return domain.Place{
		Latitude:    r.Lat,
		Longitude:   r.Lon,
		DisplayName: r.DisplayName,
	}, nil
}

// Nominatim API response types. Coordinates are decimal strings.

type result struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
