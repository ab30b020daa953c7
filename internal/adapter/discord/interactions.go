package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/chat-utility-bot/internal/command"
)

// Interaction and response types.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	responsePong                   = 1
	responseChannelMessage         = 4
	responseDeferredChannelMessage = 5
)

const maxBodyBytes = 1 << 20

// followupTimeout bounds the edit that delivers a deferred reply, counted
// from when the command returns.
const followupTimeout = 10 * time.Second

// Executor runs commands. *command.Router satisfies it.
type Executor interface {
	Execute(ctx context.Context, inv command.Invocation) command.Result
	Deferred(name string) bool
}

// Followups edits deferred responses. *Client satisfies it.
type Followups interface {
	EditOriginal(ctx context.Context, interactionToken, content string) error
}

type interaction struct {
	ID     string           `json:"id"`
	Type   int              `json:"type"`
	Token  string           `json:"token"`
	Data   *interactionData `json:"data"`
	Member *struct {
		User *user `json:"user"`
	} `json:"member"`
	User *user `json:"user"`
}

type interactionData struct {
	Name    string              `json:"name"`
	Options []interactionOption `json:"options"`
}

type interactionOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type user struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type response struct {
	Type int           `json:"type"`
	Data *responseData `json:"data,omitempty"`
}

type responseData struct {
	Content string `json:"content"`
}

// InteractionHandler serves Discord's interactions webhook.
type InteractionHandler struct {
	publicKey      ed25519.PublicKey
	router         Executor
	followups      Followups
	commandTimeout time.Duration
	logger         *slog.Logger
	inflight       sync.WaitGroup
}

// NewInteractionHandler creates the webhook handler. Deferred commands run
// with commandTimeout, independent of the inbound request.
func NewInteractionHandler(publicKey ed25519.PublicKey, router Executor, followups Followups, commandTimeout time.Duration, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		publicKey:      publicKey,
		router:         router,
		followups:      followups,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

// Wait blocks until every deferred command has sent its follow-up.
func (h *InteractionHandler) Wait() {
	h.inflight.Wait()
}

func (h *InteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}
	if !h.verify(r.Header, body) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in interaction
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	switch in.Type {
	case interactionPing:
		writeResponse(w, response{Type: responsePong})
	case interactionApplicationCommand:
		h.handleCommand(w, r, in)
	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

func (h *InteractionHandler) handleCommand(w http.ResponseWriter, r *http.Request, in interaction) {
	if in.Data == nil {
		http.Error(w, "missing command data", http.StatusBadRequest)
		return
	}
	inv := toInvocation(in)

	if !h.router.Deferred(inv.Command) {
		res := h.router.Execute(r.Context(), inv)
		writeResponse(w, response{Type: responseChannelMessage, Data: &responseData{Content: clip(res.Text, maxMessageLength)}})
		return
	}

	writeResponse(w, response{Type: responseDeferredChannelMessage})

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.commandTimeout)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		defer cancel()

		res := h.router.Execute(ctx, inv)

		fctx, fcancel := context.WithTimeout(context.WithoutCancel(ctx), followupTimeout)
		defer fcancel()
		if err := h.followups.EditOriginal(fctx, in.Token, res.Text); err != nil {
			h.logger.Error("follow-up failed",
				"command", inv.Command,
				"invocation_id", inv.ID,
				"error", err,
			)
		}
	}()
}

// verify checks the Ed25519 signature over timestamp+body.
func (h *InteractionHandler) verify(header http.Header, body []byte) bool {
	sig, err := hex.DecodeString(header.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	timestamp := header.Get("X-Signature-Timestamp")
	if timestamp == "" {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(h.publicKey, msg, sig)
}

func toInvocation(in interaction) command.Invocation {
	inv := command.Invocation{
		ID:      in.ID,
		Command: in.Data.Name,
		Source:  "discord",
		Options: make(map[string]string, len(in.Data.Options)),
	}
	u := in.User
	if in.Member != nil && in.Member.User != nil {
		u = in.Member.User
	}
	if u != nil {
		inv.UserID = u.ID
		inv.UserName = u.Username
	}
	for _, opt := range in.Data.Options {
		inv.Options[opt.Name] = optionText(opt.Value)
	}
	return inv
}

// optionText renders an option value as text: strings unquoted, other
// JSON scalars as written.
func optionText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck // client gone
}
