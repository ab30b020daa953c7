// Package tmdb is a minimal client for The Movie Database discovery and
// movie-detail endpoints.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const (
	service = "tmdb"

	// MinVoteCount keeps obscure titles with a handful of votes out of discovery.
	MinVoteCount = 10
)

// Client implements domain.MovieCatalog.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a TMDB client authenticated with an API key.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.themoviedb.org/3",
		metrics:    metrics,
		logger:     logger,
	}
}

// Discover returns one page of popular movies, optionally restricted to any
// of q.GenreIDs.
func (c *Client) Discover(ctx context.Context, q domain.DiscoverQuery) ([]domain.MovieSummary, error) {
	params := url.Values{
		"api_key":        {c.apiKey},
		"sort_by":        {"popularity.desc"},
		"include_adult":  {"false"},
		"vote_count.gte": {strconv.Itoa(MinVoteCount)},
		"page":           {strconv.Itoa(q.Page)},
	}
	if len(q.GenreIDs) > 0 {
		ids := make([]string, len(q.GenreIDs))
		for i, id := range q.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, "|"))
	}

	var resp discoverResponse
	if err := c.get(ctx, "discover", "/discover/movie", params, &resp); err != nil {
		return nil, err
	}

	movies := make([]domain.MovieSummary, 0, len(resp.Results))
	for _, m := range resp.Results {
		movies = append(movies, domain.MovieSummary{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			VoteAverage: m.VoteAverage,
		})
	}
	return movies, nil
}

// Details fetches runtime and genre names for a movie.
func (c *Client) Details(ctx context.Context, id int64) (domain.MovieDetails, error) {
	var resp detailsResponse
	path := "/movie/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, "details", path, url.Values{"api_key": {c.apiKey}}, &resp); err != nil {
		return domain.MovieDetails{}, err
	}

	details := domain.MovieDetails{Runtime: resp.Runtime}
	for _, g := range resp.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	start := time.Now()
	err := c.doRequest(ctx, c.baseURL+path+"?"+params.Encode(), out)
	if err != nil {
		c.metrics.ObserveUpstream(service, observability.OutcomeError, start)
		c.logger.Warn("tmdb request failed", "operation", op, "error", err)
		return err
	}
	c.metrics.ObserveUpstream(service, observability.OutcomeSuccess, start)
	return nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.NetworkError(service, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the API key; drop it from the wrapped error.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return domain.NetworkError(service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr statusResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return domain.NetworkError(service, fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.StatusMessage))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ParseError(service, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// TMDB API response types.

type discoverResponse struct {
	Page    int           `json:"page"`
	Results []movieResult `json:"results"`
}

type movieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

type detailsResponse struct {
	Runtime int `json:"runtime"`
	Genres  []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type statusResponse struct {
	StatusMessage string `json:"status_message"`
}
