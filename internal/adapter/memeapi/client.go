// Package memeapi fetches a random meme image from meme-api.com.
package memeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const service = "meme"

// Client implements domain.MemeSource. It makes a single attempt per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

// NewClient creates a meme client.
func NewClient(timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://meme-api.com",
		metrics:    metrics,
	}
}

// Fetch returns the image URL of a random meme.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	start := time.Now()
	u, err := c.fetch(ctx)
	if err != nil {
		c.metrics.ObserveUpstream(service, observability.OutcomeError, start)
		return "", err
	}
	c.metrics.ObserveUpstream(service, observability.OutcomeSuccess, start)
	return u, nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/gimme", nil)
	if err != nil {
		return "", domain.NetworkError(service, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NetworkError(service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NetworkError(service, fmt.Errorf("status %d", resp.StatusCode))
	}

	var meme struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meme); err != nil {
		return "", domain.ParseError(service, fmt.Errorf("decode response: %w", err))
	}
	if meme.URL == "" {
		return "", domain.ParseError(service, errors.New("response has no url"))
	}
	return meme.URL, nil
}
