package authsync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SynchronizerOption customizes synchronizer construction.
type SynchronizerOption func(*Synchronizer)

// WithSynchronizerLogger overrides the logger.
func WithSynchronizerLogger(logger Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSynchronizerClock injects a custom clock (useful for tests).
func WithSynchronizerClock(clock func() time.Time) SynchronizerOption {
	return func(s *Synchronizer) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithTokenResolver sets the default claim retrieval used when an event
// does not carry its own resolver.
func WithTokenResolver(resolver TokenResolver) SynchronizerOption {
	return func(s *Synchronizer) {
		s.resolver = resolver
	}
}

// WithProfileSyncer sets the best-effort profile metadata consumer.
func WithProfileSyncer(syncer ProfileSyncer) SynchronizerOption {
	return func(s *Synchronizer) {
		s.profiles = syncer
	}
}

// WithTelemetrySink sets the sink tagged with the active user on every
// snapshot change.
func WithTelemetrySink(sink TelemetrySink) SynchronizerOption {
	return func(s *Synchronizer) {
		s.telemetry = sink
	}
}

// WithSynchronizerActivitySink sets the ActivitySink used to publish
// session lifecycle events.
func WithSynchronizerActivitySink(sink ActivitySink) SynchronizerOption {
	return func(s *Synchronizer) {
		s.activity = normalizeActivitySink(sink)
	}
}

// WithInitialIdentity seeds the held identity, e.g. from a server-rendered
// session, so consumers see a signed-in snapshot before the first event.
func WithInitialIdentity(identity *Identity) SynchronizerOption {
	return func(s *Synchronizer) {
		s.identity = identity
	}
}

// Synchronizer owns the current Identity and reconciles it with the server
// session. It is the only writer of identity state; everything else reads
// through the snapshot publisher.
type Synchronizer struct {
	exchanger SessionExchanger
	resolver  TokenResolver
	publisher *SnapshotPublisher
	profiles  ProfileSyncer
	telemetry TelemetrySink
	activity  ActivitySink
	logger    Logger
	now       func() time.Time

	// arrived is the sequence of the newest accepted event; an in-flight
	// exchange whose sequence is older must not mutate state.
	arrived atomic.Uint64

	// processMu serializes event handling end to end so two events are
	// never mid-flight against the exchanger at the same time.
	processMu sync.Mutex

	stateMu  sync.Mutex
	identity *Identity
}

// NewSynchronizer builds a synchronizer around the required session
// exchanger.
func NewSynchronizer(exchanger SessionExchanger, opts ...SynchronizerOption) (*Synchronizer, error) {
	if exchanger == nil {
		return nil, ErrMissingExchanger
	}

	s := &Synchronizer{
		exchanger: exchanger,
		publisher: NewSnapshotPublisher(),
		activity:  noopActivitySink{},
		logger:    defLogger{},
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.publisher.publish(snapshotFor(s.identity))

	return s, nil
}

// Publisher exposes the snapshot broadcast for consumers.
func (s *Synchronizer) Publisher() *SnapshotPublisher {
	return s.publisher
}

// Snapshot returns the current consumer-facing view.
func (s *Synchronizer) Snapshot() Snapshot {
	return s.publisher.Current()
}

// Subscribe registers a snapshot listener and returns its unsubscribe
// function.
func (s *Synchronizer) Subscribe(fn SnapshotListener) func() {
	return s.publisher.Subscribe(fn)
}

// OnTokenEvent consumes one token-change notification. Events are
// processed strictly one at a time; concurrent callers queue behind the
// in-flight exchange, and a response that resolves after a newer event has
// arrived is discarded instead of clobbering the newer state.
func (s *Synchronizer) OnTokenEvent(ctx context.Context, event TokenEvent) error {
	seq := s.arrived.Add(1)

	s.processMu.Lock()
	defer s.processMu.Unlock()

	record := event.Record
	if record != nil && record.UID == "" {
		s.logger.Warn("token event carries no usable identifier, treating as sign-out")
		record = nil
	}

	current := s.currentIdentity()

	// Token refreshes that change neither the principal nor its
	// verification flag never hit the network.
	if record != nil && current != nil &&
		current.ID == record.UID && current.EmailVerified == record.EmailVerified {
		s.logger.Debug("token event is a no-op", "user_id", record.UID)
		return nil
	}

	if record == nil {
		return s.signOut(ctx, seq, current)
	}

	return s.signIn(ctx, seq, record, event.Resolver)
}

// signOut clears the held identity before touching the network: the local
// view is authoritative for consumers, and a server session that outlives
// it will self-expire or be replaced on the next login.
func (s *Synchronizer) signOut(ctx context.Context, seq uint64, current *Identity) error {
	if current == nil {
		return nil
	}

	s.replaceIdentity(ctx, seq, nil)

	status, err := s.exchanger.ClearSession(ctx)
	if err != nil {
		clone := ErrSessionClear.Clone()
		clone.Source = err
		s.logger.Error("clear-session call failed", "error", clone, "user_id", current.ID)
	} else if !isSuccessStatus(status) {
		s.logger.Warn("clear-session answered non-success", "status", status, "user_id", current.ID)
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionCleared,
		UserID:    current.ID,
		Sequence:  seq,
		Metadata:  map[string]any{"status": status},
	})

	return nil
}

func (s *Synchronizer) signIn(ctx context.Context, seq uint64, record *TokenRecord, resolver TokenResolver) error {
	if resolver == nil {
		resolver = s.resolver
	}

	result, err := s.resolveClaims(ctx, resolver)
	if err != nil {
		// Hard failure of this attempt only; the prior identity stands.
		s.logger.Error("token claim retrieval failed", "error", err, "user_id", record.UID)
		s.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventClaimsFailure,
			UserID:    record.UID,
			Sequence:  seq,
		})
		return err
	}

	status, err := s.exchanger.EstablishSession(ctx, result.Token)
	if err != nil || !isSuccessStatus(status) {
		return s.rejectSession(ctx, seq, record, status, err)
	}

	identity := Normalize(record, result)

	if !s.isLatest(seq) {
		s.logger.Debug("discarding stale establish-session response", "sequence", seq, "user_id", record.UID)
		return nil
	}

	s.replaceIdentity(ctx, seq, identity)

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionEstablished,
		UserID:    identity.ID,
		Provider:  identity.SignInProvider,
		Sequence:  seq,
		Metadata:  map[string]any{"status": status},
	})

	return nil
}

// rejectSession fails closed: without a server session a signed-in client
// view would be a lie, so the held identity is dropped and the cookie is
// cleared best-effort.
func (s *Synchronizer) rejectSession(ctx context.Context, seq uint64, record *TokenRecord, status int, cause error) error {
	s.logger.Error("establish-session rejected, forcing sign-out", "status", status, "user_id", record.UID)

	if _, err := s.exchanger.ClearSession(ctx); err != nil {
		s.logger.Warn("clear-session during forced sign-out failed", "error", err)
	}

	if s.isLatest(seq) {
		s.replaceIdentity(ctx, seq, nil)
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionRejected,
		UserID:    record.UID,
		Sequence:  seq,
		Metadata:  map[string]any{"status": status},
	})

	rejected := ErrSessionRejected.Clone()
	rejected.Source = cause
	return rejected.WithMetadata(map[string]any{
		"status":  status,
		"user_id": record.UID,
	})
}

func (s *Synchronizer) resolveClaims(ctx context.Context, resolver TokenResolver) (*TokenResult, error) {
	if resolver == nil {
		return nil, ErrClaimRetrieval.Clone().WithMetadata(map[string]any{
			"reason": "no token resolver configured",
		})
	}

	result, err := resolver.TokenResult(ctx)
	if err != nil {
		clone := ErrClaimRetrieval.Clone()
		clone.Source = err
		return nil, clone
	}
	if result == nil || result.Token == "" {
		return nil, ErrClaimRetrieval.Clone().WithMetadata(map[string]any{
			"reason": "resolver returned an empty credential",
		})
	}

	return result, nil
}

// replaceIdentity supersedes the held identity, publishes the derived
// snapshot, and runs the best-effort side effects. Must only be called
// from the serialized event path.
func (s *Synchronizer) replaceIdentity(ctx context.Context, seq uint64, identity *Identity) {
	s.stateMu.Lock()
	s.identity = identity
	s.stateMu.Unlock()

	snapshot := snapshotFor(identity)
	s.publisher.publish(snapshot)

	if s.telemetry != nil {
		if err := s.telemetry.SetCurrentUser(ctx, snapshot.CurrentUserID); err != nil {
			s.logger.Warn("telemetry user tag error", "error", err)
		}
	}

	if s.profiles != nil && identity != nil && identity.ID != "" {
		if err := s.profiles.UpdateProfile(ctx, identity.ID, identity.DisplayName, identity.PhotoURL); err != nil {
			s.logger.Warn("profile sync error", "error", err, "user_id", identity.ID)
		}
	}
}

func (s *Synchronizer) currentIdentity() *Identity {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.identity
}

func (s *Synchronizer) isLatest(seq uint64) bool {
	return s.arrived.Load() == seq
}

func (s *Synchronizer) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	sink := normalizeActivitySink(s.activity)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("synchronizer activity sink error: %v", err)
	}
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
