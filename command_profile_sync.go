package authsync

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ProfileSyncMessage carries the metadata persisted when the active
// identity changes.
type ProfileSyncMessage struct {
	SubjectID      string `json:"subject_id"`
	DisplayName    string `json:"display_name"`
	PhotoURL       string `json:"photo_url"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	SignInProvider string `json:"sign_in_provider"`
}

func (m ProfileSyncMessage) Type() string { return "profile.sync" }

// ProfileSyncHandler persists profile metadata into the local cache. It
// doubles as the synchronizer's ProfileSyncer so identity changes flow
// straight into the store.
type ProfileSyncHandler struct {
	profiles Profiles
	logger   Logger
}

var _ ProfileSyncer = (*ProfileSyncHandler)(nil)

// NewProfileSyncHandler will create a new ProfileSyncHandler
func NewProfileSyncHandler(profiles Profiles, opts ...ProfileSyncHandlerOption) *ProfileSyncHandler {
	h := &ProfileSyncHandler{
		profiles: profiles,
		logger:   defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type ProfileSyncHandlerOption func(*ProfileSyncHandler)

// WithProfileSyncLogger overrides the handler logger.
func WithProfileSyncLogger(logger Logger) ProfileSyncHandlerOption {
	return func(h *ProfileSyncHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func (h *ProfileSyncHandler) Execute(ctx context.Context, event ProfileSyncMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile sync",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ProfileSyncHandler) execute(ctx context.Context, event ProfileSyncMessage) error {
	if event.SubjectID == "" {
		return goerrors.New("profile sync requires a subject id", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, err := h.profiles.UpsertBySubject(ctx, &Profile{
		SubjectID:      event.SubjectID,
		DisplayName:    event.DisplayName,
		PhotoURL:       event.PhotoURL,
		Email:          event.Email,
		Phone:          event.Phone,
		SignInProvider: event.SignInProvider,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "could not persist profile metadata").
			WithMetadata(map[string]any{
				"subject_id": event.SubjectID,
			})
	}

	return nil
}

// UpdateProfile implements ProfileSyncer for the synchronizer's
// fire-and-forget side effect.
func (h *ProfileSyncHandler) UpdateProfile(ctx context.Context, userID, displayName, photoURL string) error {
	return h.Execute(ctx, ProfileSyncMessage{
		SubjectID:   userID,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	})
}
