// Package command holds the command table and executes invocations against
// it. Every invocation produces exactly one reply, is measured, and is
// reported to an optional event sink.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/chat-utility-bot/internal/bot"
	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

// OptionKind is the value type of a command option.
type OptionKind string

const (
	KindString OptionKind = "string"
	KindBool   OptionKind = "bool"
)

// Option describes one named argument of a command.
type Option struct {
	Name        string
	Description string
	Kind        OptionKind
	Required    bool
	Choices     []string
}

// Invocation is a single request to run a command. Option values arrive as
// text whatever their kind.
type Invocation struct {
	ID       string
	Command  string
	UserID   string
	UserName string
	Source   string
	Options  map[string]string
}

// Option returns the named option value, or "" when absent.
func (inv Invocation) Option(name string) string {
	return inv.Options[name]
}

// HandlerFunc runs a command and returns its reply text.
type HandlerFunc func(ctx context.Context, inv Invocation) (string, error)

// Command is an entry in the command table.
type Command struct {
	Name        string
	Description string
	Options     []Option
	// Deferred commands may take longer than the platform's initial response
	// window and are acknowledged before they run.
	Deferred bool
	Handler  HandlerFunc
}

// Result is the outcome of one invocation.
type Result struct {
	ID      string
	Text    string
	Outcome string
	Err     error
}

// EventSink receives an event per executed invocation. Record must not block.
type EventSink interface {
	Record(event domain.CommandEvent)
}

// Router dispatches invocations to the command table.
type Router struct {
	commands map[string]Command
	order    []string
	sink     EventSink
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewRouter creates an empty router. sink may be nil.
func NewRouter(sink EventSink, logger *slog.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		commands: make(map[string]Command),
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds cmd to the table, replacing any command of the same name.
func (r *Router) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the named command.
func (r *Router) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the table in registration order.
func (r *Router) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Deferred reports whether the named command is acknowledged before it runs.
func (r *Router) Deferred(name string) bool {
	return r.commands[name].Deferred
}

// Execute runs inv and always returns a reply. Handler panics are recovered
// and reported as errors.
func (r *Router) Execute(ctx context.Context, inv Invocation) (res Result) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	start := time.Now()
	res.ID = inv.ID

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("command panicked",
				"command", inv.Command,
				"invocation_id", inv.ID,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			res.Text = bot.ReplyFor(nil)
			res.Outcome = domain.OutcomePanic
			res.Err = fmt.Errorf("command %s panicked: %v", inv.Command, p)
		}
		r.finish(inv, res, time.Since(start))
	}()

	cmd, ok := r.commands[inv.Command]
	if !ok {
		res.Text = fmt.Sprintf("❓ Unknown command: %s. Try /help", inv.Command)
		res.Outcome = domain.OutcomeUnknown
		res.Err = fmt.Errorf("unknown command %q", inv.Command)
		return res
	}

	if err := validateOptions(cmd, inv); err != nil {
		res.Text = "⚠️ " + err.Error()
		res.Outcome = domain.OutcomeError
		res.Err = err
		return res
	}

	text, err := cmd.Handler(ctx, inv)
	if err != nil {
		res.Text = bot.ReplyFor(err)
		res.Outcome = domain.OutcomeError
		res.Err = err
		return res
	}

	res.Text = text
	res.Outcome = domain.OutcomeSuccess
	return res
}

func (r *Router) finish(inv Invocation, res Result, elapsed time.Duration) {
	r.metrics.CommandsTotal.WithLabelValues(r.metricName(inv.Command), res.Outcome).Inc()
	r.metrics.CommandDuration.WithLabelValues(r.metricName(inv.Command)).Observe(elapsed.Seconds())

	attrs := []any{
		"command", inv.Command,
		"invocation_id", inv.ID,
		"user_id", inv.UserID,
		"source", inv.Source,
		"outcome", res.Outcome,
		"duration", elapsed,
	}
	if res.Err != nil && res.Outcome != domain.OutcomePanic {
		r.logger.Warn("command failed", append(attrs, "error", res.Err)...)
	} else {
		r.logger.Debug("command completed", attrs...)
	}

	if r.sink == nil {
		return
	}
	event := domain.CommandEvent{
		ID:         inv.ID,
		Command:    inv.Command,
		UserID:     inv.UserID,
		Source:     inv.Source,
		Outcome:    res.Outcome,
		Duration:   elapsed,
		OccurredAt: time.Now().UTC(),
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	}
	r.sink.Record(event)
}

// metricName bounds label cardinality by folding unknown names together.
func (r *Router) metricName(name string) string {
	if _, ok := r.commands[name]; ok {
		return name
	}
	return "unknown"
}

var errInvalidOption = errors.New("invalid option")

func validateOptions(cmd Command, inv Invocation) error {
	for _, opt := range cmd.Options {
		v, present := inv.Options[opt.Name]
		if opt.Required && (!present || v == "") {
			return fmt.Errorf("%w: %s is required", errInvalidOption, opt.Name)
		}
		if present && opt.Kind == KindBool && v != "" {
			if _, err := parseBool(v); err != nil {
				return fmt.Errorf("%w: %s must be true or false", errInvalidOption, opt.Name)
			}
		}
	}
	return nil
}
