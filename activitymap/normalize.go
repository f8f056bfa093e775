// Package activitymap converts session lifecycle activity into a
// transport-agnostic shape for downstream feeds and audit pipelines.
package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-authsync"
)

const (
	// MetadataKeyProvider stores the sign-in provider for session events.
	MetadataKeyProvider = "provider"
	// MetadataKeySequence stores the event ordering sequence.
	MetadataKeySequence = "sequence"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "session"
	defaultActorID    = "anonymous"
)

// Normalized is the generic activity shape downstream systems consume.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts an authsync.ActivityEvent into the generic shape. The
// acting user doubles as the object: session events are always about the
// session of the user who triggered them.
func Normalize(event authsync.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := strings.TrimSpace(event.UserID)
	if actorID == "" {
		actorID = options.actorFallback
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   strings.TrimSpace(event.UserID),
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// Sink adapts a consumer of normalized records into an
// authsync.ActivitySink.
func Sink(consume func(Normalized) error, opts ...Option) authsync.ActivitySinkFunc {
	return func(_ context.Context, event authsync.ActivityEvent) error {
		if consume == nil {
			return nil
		}
		return consume(Normalize(event, opts...))
	}
}

// WithChannel sets the channel for normalized records.
func WithChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType sets the object type for normalized records.
func WithObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event carries none,
// e.g. a sign-out that raced a session rejection.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func normalizeMetadata(event authsync.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if provider := strings.TrimSpace(event.Provider); provider != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyProvider]; !exists {
			metadata[MetadataKeyProvider] = provider
		}
	}

	if event.Sequence > 0 {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeySequence] = event.Sequence
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
