package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestTokenRepo(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewTokenRepo(db)

	_, err = repo.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential)

	require.NoError(t, repo.SaveToken(ctx, "jwt"))
	tok, err := repo.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)

	require.NoError(t, repo.ClearToken(ctx))
	_, err = repo.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential)
}

func TestTokenRepoPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, NewTokenRepo(db).SaveToken(ctx, "kept"))
	require.NoError(t, db.Close())

	db, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	tok, err := NewTokenRepo(db).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept", tok)
}

func TestNotificationRepo(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewNotificationRepo(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "7", Body: "first", CreatedAt: now}))
	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "7", Body: "second", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "8", Body: "other", CreatedAt: now.Add(-time.Minute)}))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ID("7"), list[0].ConversationID)
	assert.Equal(t, "second", list[0].Body)
	assert.Equal(t, 2, list[0].UnreadCount)

	require.NoError(t, repo.MarkConversationRead(ctx, "7"))
	require.NoError(t, repo.MarkConversationRead(ctx, "missing"))

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	require.NoError(t, repo.Clear(ctx))
	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
