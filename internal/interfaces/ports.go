package interfaces

import (
	"context"

	"chatrelay/internal/entities"
)

// CompletionResult is the outcome of one completion call.
// Exactly one of Content or Err is meaningful.
type CompletionResult struct {
	Content string
	Err     error
	// Kind classifies a failure for logging ("timeout", "http_5xx", ...).
	Kind string
}

// Failed reports whether the call produced no usable reply.
func (r CompletionResult) Failed() bool {
	return r.Err != nil
}

// AIClient generates the next assistant reply for an ordered history.
type AIClient interface {
	Complete(ctx context.Context, history []entities.Turn) CompletionResult
}

// DeliveryResult is what the messaging provider answered.
type DeliveryResult struct {
	StatusCode int
	Body       string
	Err        error
}

// Messenger delivers a text message to a user.
type Messenger interface {
	SendMessage(ctx context.Context, to, content string) DeliveryResult
}

// SessionStore maps user identifiers to sessions.
// Get creates the initial inactive session on first contact.
type SessionStore interface {
	Get(userID string) entities.Session
	Set(session entities.Session)
	Reset(userID string)
	Len() int
}

// UsageRecorder counts relayed messages per user.
type UsageRecorder interface {
	IncrementReceived(ctx context.Context, userID string) error
	IncrementSent(ctx context.Context, userID string) error
}

// UsageReader is implemented by recorders that can report today's counters.
type UsageReader interface {
	GetTodayUsage(ctx context.Context, userID string) (sent, received int, err error)
}
