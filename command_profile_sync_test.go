package authsync_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileSyncHandlerExecute(t *testing.T) {
	db := setupProfilesDB(t)
	repo := authsync.NewProfilesRepository(db)
	handler := authsync.NewProfileSyncHandler(repo,
		authsync.WithProfileSyncLogger(quietLogger{}),
	)

	err := handler.Execute(context.Background(), authsync.ProfileSyncMessage{
		SubjectID:      "u1",
		DisplayName:    "Person",
		Email:          "u1@example.com",
		SignInProvider: "google.com",
	})
	require.NoError(t, err)

	profile, err := repo.GetBySubject(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Person", profile.DisplayName)
	assert.Equal(t, "u1@example.com", profile.Email)
}

func TestProfileSyncHandlerRequiresSubject(t *testing.T) {
	db := setupProfilesDB(t)
	repo := authsync.NewProfilesRepository(db)
	handler := authsync.NewProfileSyncHandler(repo)

	err := handler.Execute(context.Background(), authsync.ProfileSyncMessage{
		DisplayName: "No Subject",
	})
	require.Error(t, err)
}

func TestProfileSyncHandlerHonorsCancellation(t *testing.T) {
	db := setupProfilesDB(t)
	repo := authsync.NewProfilesRepository(db)
	handler := authsync.NewProfileSyncHandler(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, authsync.ProfileSyncMessage{SubjectID: "u1"})
	require.Error(t, err)
}

func TestProfileSyncHandlerUpdateProfile(t *testing.T) {
	db := setupProfilesDB(t)
	repo := authsync.NewProfilesRepository(db)
	handler := authsync.NewProfileSyncHandler(repo)

	err := handler.UpdateProfile(context.Background(), "u1", "Person", "https://example.com/u1.png")
	require.NoError(t, err)

	profile, err := repo.GetBySubject(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Person", profile.DisplayName)
	assert.Equal(t, "https://example.com/u1.png", profile.PhotoURL)

	assert.Equal(t, "profile.sync", authsync.ProfileSyncMessage{}.Type())
}
