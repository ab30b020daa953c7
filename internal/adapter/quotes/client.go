// Package quotes fetches a quotation from an ordered chain of public quote APIs.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

// Source is one quote endpoint and the rule for extracting a quote from its body.
type Source struct {
	Name    string
	URL     string
	Extract func(body []byte) (domain.Quote, error)
}

// DefaultSources returns the production fallback chain, tried in order.
func DefaultSources() []Source {
	return []Source{
		{Name: "quotable", URL: "https://api.quotable.io/random", Extract: extractQuotable},
		{Name: "zenquotes", URL: "https://zenquotes.io/api/random", Extract: extractZenQuotes},
		{Name: "forismatic", URL: "https://api.forismatic.com/api/1.0/?method=getQuote&format=json&lang=en", Extract: extractForismatic},
	}
}

// Client implements domain.QuoteSource over a fallback chain.
type Client struct {
	sources        []Source
	attemptTimeout time.Duration
	httpClient     *http.Client
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates a quote client. Each source gets attemptTimeout before the
// next one is tried.
func NewClient(sources []Source, attemptTimeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		sources:        sources,
		attemptTimeout: attemptTimeout,
		httpClient:     &http.Client{Timeout: attemptTimeout},
		metrics:        metrics,
		logger:         logger,
	}
}

// Fetch returns the first quote any source produces, or
// domain.ErrAllSourcesUnavailable when every source fails.
func (c *Client) Fetch(ctx context.Context) (domain.Quote, error) {
	for _, src := range c.sources {
		q, err := c.try(ctx, src)
		if err == nil {
			return q, nil
		}
		c.metrics.QuoteSourceFailures.WithLabelValues(src.Name).Inc()
		c.logger.Debug("quote source failed, trying next", "source", src.Name, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return domain.Quote{}, domain.ErrAllSourcesUnavailable
}

func (c *Client) try(ctx context.Context, src Source) (domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	start := time.Now()
	q, err := c.fetchSource(ctx, src)
	if err != nil {
		c.metrics.ObserveUpstream("quote_"+src.Name, observability.OutcomeError, start)
		return domain.Quote{}, err
	}
	c.metrics.ObserveUpstream("quote_"+src.Name, observability.OutcomeSuccess, start)
	return q, nil
}

func (c *Client) fetchSource(ctx context.Context, src Source) (domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return domain.Quote{}, domain.NetworkError(src.Name, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Quote{}, domain.NetworkError(src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Quote{}, domain.NetworkError(src.Name, fmt.Errorf("status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.Quote{}, domain.NetworkError(src.Name, err)
	}

	q, err := src.Extract(body)
	if err != nil {
		return domain.Quote{}, domain.ParseError(src.Name, err)
	}
	if q.Text == "" || q.Author == "" {
		return domain.Quote{}, domain.ParseError(src.Name, errors.New("empty quote"))
	}
	return q, nil
}

// extractQuotable reads {"content": "...", "author": "..."}.
func extractQuotable(body []byte) (domain.Quote, error) {
	var v struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Text: strings.TrimSpace(v.Content), Author: strings.TrimSpace(v.Author)}, nil
}

// extractZenQuotes reads [{"q": "...", "a": "..."}].
func extractZenQuotes(body []byte) (domain.Quote, error) {
	var v []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.Quote{}, err
	}
	if len(v) == 0 {
		return domain.Quote{}, errors.New("empty array")
	}
	return domain.Quote{Text: strings.TrimSpace(v[0].Q), Author: strings.TrimSpace(v[0].A)}, nil
}

// extractForismatic reads {"quoteText": "...", "quoteAuthor": "..."}; the
// author is often empty.
func extractForismatic(body []byte) (domain.Quote, error) {
	var v struct {
		QuoteText   *string `json:"quoteText"`
		QuoteAuthor string  `json:"quoteAuthor"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.Quote{}, err
	}
	if v.QuoteText == nil {
		return domain.Quote{}, errors.New("missing quoteText")
	}
	author := strings.TrimSpace(v.QuoteAuthor)
	if author == "" {
		author = "Unknown"
	}
	return domain.Quote{Text: strings.TrimSpace(*v.QuoteText), Author: author}, nil
}
