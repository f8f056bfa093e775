package authsync

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionExchanger performs the two idempotent server session calls. Both
// return the HTTP status code observed; the error is reserved for transport
// failures where no status was received.
type SessionExchanger interface {
	EstablishSession(ctx context.Context, token string) (int, error)
	ClearSession(ctx context.Context) (int, error)
}

// TokenResolver retrieves the current bearer credential together with its
// decoded claims. Retrieval may fail (expired refresh, provider outage);
// the synchronizer treats that as a hard failure of the attempt.
type TokenResolver interface {
	TokenResult(ctx context.Context) (*TokenResult, error)
}

// TokenResolverFunc adapts a function into a TokenResolver.
type TokenResolverFunc func(ctx context.Context) (*TokenResult, error)

// TokenResult satisfies the TokenResolver interface.
func (f TokenResolverFunc) TokenResult(ctx context.Context) (*TokenResult, error) {
	if f == nil {
		return nil, ErrClaimRetrieval
	}
	return f(ctx)
}

// ProfileSyncer persists display metadata for a signed-in principal.
// Calls are best-effort: failures are logged and never touch the snapshot.
type ProfileSyncer interface {
	UpdateProfile(ctx context.Context, userID, displayName, photoURL string) error
}

// ProfileSyncerFunc adapts a function into a ProfileSyncer.
type ProfileSyncerFunc func(ctx context.Context, userID, displayName, photoURL string) error

// UpdateProfile satisfies the ProfileSyncer interface.
func (f ProfileSyncerFunc) UpdateProfile(ctx context.Context, userID, displayName, photoURL string) error {
	if f == nil {
		return nil
	}
	return f(ctx, userID, displayName, photoURL)
}

// TelemetrySink tags analytics events with the active user. An empty userID
// means "no active user".
type TelemetrySink interface {
	SetCurrentUser(ctx context.Context, userID string) error
}

// TelemetrySinkFunc adapts a function into a TelemetrySink.
type TelemetrySinkFunc func(ctx context.Context, userID string) error

// SetCurrentUser satisfies the TelemetrySink interface.
func (f TelemetrySinkFunc) SetCurrentUser(ctx context.Context, userID string) error {
	if f == nil {
		return nil
	}
	return f(ctx, userID)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHSYNC "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHSYNC "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
