// Package discord connects the command router to Discord's HTTP interactions
// API: an inbound webhook handler plus a small REST client for follow-ups and
// command registration.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/command"
)

// DefaultAPIURL is Discord's REST API root.
const DefaultAPIURL = "https://discord.com/api/v10"

// maxMessageLength is Discord's limit on message content.
const maxMessageLength = 2000

// Application command option types.
const (
	optionTypeString  = 3
	optionTypeBoolean = 5
)

// Client calls the Discord REST API on behalf of one application.
type Client struct {
	baseURL       string
	applicationID string
	botToken      string
	httpClient    *http.Client
}

// NewClient creates a REST client. An empty baseURL selects DefaultAPIURL.
func NewClient(baseURL, applicationID, botToken string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:       baseURL,
		applicationID: applicationID,
		botToken:      botToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// EditOriginal replaces the content of a deferred interaction response.
// Interaction tokens authenticate the webhook, so no bot token is sent.
func (c *Client) EditOriginal(ctx context.Context, interactionToken, content string) error {
	body := map[string]string{"content": clip(content, maxMessageLength)}
	url := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, c.applicationID, interactionToken)
	return c.do(ctx, http.MethodPatch, url, body, false)
}

type commandPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []optionPayload `json:"options,omitempty"`
}

type optionPayload struct {
	Type        int             `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required,omitempty"`
	Choices     []choicePayload `json:"choices,omitempty"`
}

type choicePayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RegisterCommands overwrites the application's global slash commands with cmds.
func (c *Client) RegisterCommands(ctx context.Context, cmds []command.Command) error {
	payload := make([]commandPayload, 0, len(cmds))
	for _, cmd := range cmds {
		payload = append(payload, toCommandPayload(cmd))
	}
	url := fmt.Sprintf("%s/applications/%s/commands", c.baseURL, c.applicationID)
	return c.do(ctx, http.MethodPut, url, payload, true)
}

func toCommandPayload(cmd command.Command) commandPayload {
	p := commandPayload{Name: cmd.Name, Description: cmd.Description}
	for _, opt := range cmd.Options {
		op := optionPayload{
			Type:        optionTypeString,
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		}
		if opt.Kind == command.KindBool {
			op.Type = optionTypeBoolean
		}
		for _, choice := range opt.Choices {
			op.Choices = append(op.Choices, choicePayload{Name: choice, Value: choice})
		}
		p.Options = append(p.Options, op)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, url string, body any, authenticate bool) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode discord request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticate {
		req.Header.Set("Authorization", "Bot "+c.botToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord %s returned %d: %s", method, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
