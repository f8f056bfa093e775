package authsync

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeClaimRetrieval  = "CLAIM_RETRIEVAL_FAILED"
	textCodeSessionRejected = "SESSION_ESTABLISH_REJECTED"
	textCodeSessionClear    = "SESSION_CLEAR_FAILED"
	textCodeMissingExchange = "MISSING_SESSION_EXCHANGER"
)

// ErrClaimRetrieval is returned when the token claims fetch fails. The
// synchronization attempt is aborted and the prior identity is retained.
var ErrClaimRetrieval = goerrors.New("unable to retrieve token claims", goerrors.CategoryOperation).
	WithTextCode(textCodeClaimRetrieval).
	WithCode(goerrors.CodeInternal)

// ErrSessionRejected is returned when the establish-session call yields a
// non-success status. The synchronizer fails closed and forces a sign-out.
var ErrSessionRejected = goerrors.New("session exchange rejected", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionRejected).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionClear is the logged-only error for a failed clear-session call
// during logout; the already-cleared local identity is never reverted.
var ErrSessionClear = goerrors.New("unable to clear server session", goerrors.CategoryOperation).
	WithTextCode(textCodeSessionClear).
	WithCode(goerrors.CodeInternal)

// ErrMissingExchanger is returned by NewSynchronizer when no session
// exchanger was provided.
var ErrMissingExchanger = goerrors.New("session exchanger is required", goerrors.CategoryValidation).
	WithTextCode(textCodeMissingExchange).
	WithCode(goerrors.CodeBadRequest)
