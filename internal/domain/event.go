package domain

import "time"

// Outcomes recorded for a command invocation.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown_command"
	OutcomePanic   = "panic"
)

// CommandEvent records one completed command invocation for auditing.
type CommandEvent struct {
	ID         string        `json:"id"`
	Command    string        `json:"command"`
	UserID     string        `json:"user_id,omitempty"`
	Source     string        `json:"source"` // dispatcher that received it, e.g. "discord" or "cli"
	Outcome    string        `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	OccurredAt time.Time     `json:"occurred_at"`
}
