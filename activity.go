package authsync

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSessionEstablished ActivityEventType = "auth.session.established"
	ActivityEventSessionCleared     ActivityEventType = "auth.session.cleared"
	ActivityEventSessionRejected    ActivityEventType = "auth.session.rejected"
	ActivityEventClaimsFailure      ActivityEventType = "auth.claims.failure"
)

// ActivityEvent captures audit-friendly information about a state change.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Provider   string
	Sequence   uint64
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged, never propagated.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
