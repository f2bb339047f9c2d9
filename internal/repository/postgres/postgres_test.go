package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/database"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func TestTokenRepo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTokenRepo(pool, "test-"+t.Name())
	t.Cleanup(func() { _ = repo.ClearToken(ctx) })

	_, err := repo.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential)

	require.NoError(t, repo.SaveToken(ctx, "one"))
	require.NoError(t, repo.SaveToken(ctx, "two"))
	tok, err := repo.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", tok)

	require.NoError(t, repo.ClearToken(ctx))
	_, err = repo.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential)
}

func TestNotificationRepo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewNotificationRepo(pool, "test-"+t.Name())
	require.NoError(t, repo.Clear(ctx))
	t.Cleanup(func() { _ = repo.Clear(ctx) })

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "1", SenderID: "u2", Body: "hi", CreatedAt: now}))
	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "1", SenderID: "u2", Body: "again", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, repo.Add(ctx, domain.Notification{ConversationID: "2", SenderID: "u3", Body: "yo", UnreadCount: 5, CreatedAt: now.Add(2 * time.Second)}))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ID("2"), list[0].ConversationID)
	assert.Equal(t, 5, list[0].UnreadCount)
	assert.Equal(t, "again", list[1].Body)
	assert.Equal(t, 2, list[1].UnreadCount)

	require.NoError(t, repo.MarkConversationRead(ctx, "1"))
	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.True(t, list[1].Read)
	assert.Zero(t, list[1].UnreadCount)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
