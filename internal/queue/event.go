// Package queue defines the auth event payload exchanged over the message
// broker, the best-effort publisher, and the background consumer that turns
// events into an append-only log file.
package queue

// Event types published by the auth service.
const (
	EventUserRegistered = "user.registered"
	EventGoogleSignIn   = "user.google_signin"
	EventResetRequested = "password_reset.requested"
	EventResetCompleted = "password_reset.completed"
)

// AuthEvent is published after an account-changing operation succeeds.  It
// carries enough for downstream consumers to log or notify without querying
// the primary database.  No secrets: never a password, hash or token.
type AuthEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	At     string `json:"at"` // RFC 3339 UTC
}
