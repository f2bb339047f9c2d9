package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
)

type fakeConversationAPI struct {
	me      *domain.User
	convs   []domain.Conversation
	created domain.ID
	marked  []domain.ID
}

func (f *fakeConversationAPI) Me(context.Context) (*domain.User, error) { return f.me, nil }

func (f *fakeConversationAPI) ListConversations(context.Context) ([]domain.Conversation, error) {
	return f.convs, nil
}

func (f *fakeConversationAPI) CreateConversation(_ context.Context, other domain.ID) (*domain.Conversation, error) {
	f.created = other
	return &domain.Conversation{ID: "100"}, nil
}

func (f *fakeConversationAPI) MarkRead(_ context.Context, id domain.ID) error {
	f.marked = append(f.marked, id)
	return nil
}

func TestConversationServiceList(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fapi := &fakeConversationAPI{
		me: &domain.User{ID: "u1"},
		convs: []domain.Conversation{
			{ID: "1", UpdatedAt: base, Participants: []domain.Participant{{UserID: "u1"}, {UserID: "u2"}}},
			{ID: "2", UpdatedAt: base.Add(-time.Hour), Participants: []domain.Participant{{UserID: "u3"}, {UserID: "u1"}},
				Messages: []domain.Message{{ID: 9, CreatedAt: base.Add(time.Hour), Body: "latest"}}},
		},
	}
	store := repository.NewMemoryNotificationStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, domain.Notification{ConversationID: "2", UnreadCount: 4, CreatedAt: base}))

	svc := NewConversationService(fapi, store)
	list, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, domain.ID("2"), list[0].Conversation.ID, "recent message wins")
	assert.Equal(t, domain.ID("u3"), list[0].Peer.UserID)
	assert.Equal(t, "latest", list[0].LastMessage.Body)
	assert.Equal(t, 4, list[0].Unread)
	assert.Equal(t, domain.ID("u2"), list[1].Peer.UserID)
	assert.Zero(t, list[1].Unread)

	require.NoError(t, svc.MarkRead(ctx, "2"))
	assert.Equal(t, []domain.ID{"2"}, fapi.marked)
	list, err = svc.ListConversations(ctx)
	require.NoError(t, err)
	assert.Zero(t, list[0].Unread)
}

func TestConversationServiceGetOrCreate(t *testing.T) {
	fapi := &fakeConversationAPI{me: &domain.User{ID: "u1"}}
	svc := NewConversationService(fapi, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateConversation(ctx, "u1")
	assert.ErrorIs(t, err, ErrCannotChatSelf)

	conv, err := svc.GetOrCreateConversation(ctx, "u7")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("100"), conv.ID)
	assert.Equal(t, domain.ID("u7"), fapi.created)
}

type fakeReleaser struct{ released int }

func (f *fakeReleaser) Release() { f.released++ }

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

func TestAuthServiceLoginLogout(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	tokens := repository.NewMemoryTokenStore("")
	notes := repository.NewMemoryNotificationStore()
	releaser := &fakeReleaser{}
	svc := NewAuthService(tokens, notes, releaser, clock, nil)
	ctx := context.Background()

	jwtToken := token(t, jwt.MapClaims{
		"id":    float64(42),
		"email": "me@petzone.test",
		"exp":   clock.Now().Add(time.Hour).Unix(),
	})
	id, err := svc.Login(ctx, "Bearer "+jwtToken)
	require.NoError(t, err)
	assert.Equal(t, domain.ID("42"), id.Subject)
	assert.Equal(t, "me@petzone.test", id.Email)
	require.NotNil(t, id.ExpiresAt)

	stored, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, jwtToken, stored)

	who, err := svc.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ID("42"), who.Subject)

	require.NoError(t, notes.Add(ctx, domain.Notification{ConversationID: "1"}))
	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, 1, releaser.released)
	_, err = tokens.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential)
	left, _ := notes.List(ctx, 0)
	assert.Empty(t, left)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	tokens := repository.NewMemoryTokenStore("")
	svc := NewAuthService(tokens, nil, nil, clock, nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Login(ctx, token(t, jwt.MapClaims{"sub": "u1", "exp": clock.Now().Add(-time.Minute).Unix()}))
	assert.ErrorIs(t, err, ws.ErrCredentialExpired)
	_, err = tokens.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNoCredential, "expired tokens are not stored")

	id, err := svc.Login(ctx, "opaque-session-token")
	require.NoError(t, err)
	assert.True(t, id.Subject.IsZero())
}

func TestInboxService(t *testing.T) {
	bus := eventbus.New(nil, nil)
	store := repository.NewMemoryNotificationStore()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	inbox := NewInboxService(bus, store, clock, nil)
	ctx := context.Background()

	inbox.Start()
	inbox.Start()
	require.Equal(t, 1, bus.Len(eventbus.ConversationUnread))

	img := "https://cdn.test/x.png"
	bus.Publish(eventbus.ConversationUnread, eventbus.ConversationPayload{
		ConversationID: "7",
		UnreadCount:    2,
		LastMessage:    &domain.Message{SenderID: "u2", ImageURL: &img},
	})
	bus.Publish(eventbus.ConversationUnread, eventbus.ConversationPayload{ConversationID: "8", UserID: "u3"})
	bus.Publish(eventbus.ConversationUnread, eventbus.ConversationPayload{})

	list, err := inbox.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[domain.ID]domain.Notification{}
	for _, n := range list {
		byID[n.ConversationID] = n
	}
	assert.Equal(t, ImagePlaceholderBody, byID["7"].Body)
	assert.Equal(t, domain.ID("u2"), byID["7"].SenderID)
	assert.Equal(t, domain.ID("u3"), byID["8"].SenderID)
	assert.Equal(t, clock.Now(), byID["8"].CreatedAt)

	total, err := inbox.UnreadTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	bus.Publish(eventbus.ConversationRead, eventbus.ConversationPayload{ConversationID: "7"})
	total, err = inbox.UnreadTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	inbox.Stop()
	assert.Zero(t, bus.Len(eventbus.ConversationUnread))
	bus.Publish(eventbus.ConversationUnread, eventbus.ConversationPayload{ConversationID: "9"})
	list, _ = inbox.List(ctx, 0)
	assert.Len(t, list, 2)
}

type failingStore struct{ repository.NotificationStore }

func (failingStore) Add(context.Context, domain.Notification) error { return errors.New("disk full") }

func TestInboxServiceLogsStoreFailures(t *testing.T) {
	bus := eventbus.New(nil, nil)
	inbox := NewInboxService(bus, failingStore{repository.NewMemoryNotificationStore()}, nil, nil)
	inbox.Start()
	defer inbox.Stop()

	assert.NotPanics(t, func() {
		bus.Publish(eventbus.ConversationUnread, eventbus.ConversationPayload{ConversationID: "1"})
	})
}
