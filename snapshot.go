package authsync

import "sync"

// Snapshot is the derived, read-only view of the current identity. For
// every published snapshot: IsSignedIn implies CurrentUser is non-nil and
// CurrentUserID equals CurrentUser.ID, and CurrentUser is always verified.
type Snapshot struct {
	IsSignedIn    bool      `json:"is_signed_in"`
	CurrentUser   *Identity `json:"current_user,omitempty"`
	CurrentUserID string    `json:"current_user_id,omitempty"`
}

// snapshotFor derives the consumer-facing snapshot from a held identity,
// applying the verification gate. Unverified identities collapse to a
// signed-out view.
func snapshotFor(identity *Identity) Snapshot {
	if !IsVerified(identity) {
		return Snapshot{}
	}
	return Snapshot{
		IsSignedIn:    true,
		CurrentUser:   identity,
		CurrentUserID: identity.ID,
	}
}

// SnapshotListener receives every published snapshot, in publish order.
type SnapshotListener func(Snapshot)

// SnapshotPublisher broadcasts snapshots to subscribers and answers
// point-in-time reads. Reads never observe a half-updated view.
type SnapshotPublisher struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[int]SnapshotListener
	nextID  int
}

// NewSnapshotPublisher returns a publisher primed with a signed-out snapshot.
func NewSnapshotPublisher() *SnapshotPublisher {
	return &SnapshotPublisher{
		subs: map[int]SnapshotListener{},
	}
}

// Current returns the most recently published snapshot.
func (p *SnapshotPublisher) Current() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Subscribe registers a listener and returns its unsubscribe function.
// The listener is immediately primed with the current snapshot.
func (p *SnapshotPublisher) Subscribe(fn SnapshotListener) func() {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// publish stores the snapshot and notifies subscribers. Listeners run
// outside the state lock; publish order is preserved by the synchronizer,
// which serializes all calls.
func (p *SnapshotPublisher) publish(snapshot Snapshot) {
	p.mu.Lock()
	p.current = snapshot
	listeners := make([]SnapshotListener, 0, len(p.subs))
	for _, fn := range p.subs {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
