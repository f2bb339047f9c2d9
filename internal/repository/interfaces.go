package repository

import (
	"context"
	"errors"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
)

var (
	ErrNoCredential      = errors.New("no stored credential")
	ErrCorruptCredential = errors.New("stored credential cannot be decoded")
)

// TokenStore keeps the bearer credential of the signed-in user. Token returns
// ErrNoCredential when nothing is stored.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// NotificationStore keeps one notification per conversation, newest first.
type NotificationStore interface {
	Add(ctx context.Context, n domain.Notification) error
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkConversationRead(ctx context.Context, conversationID domain.ID) error
	Clear(ctx context.Context) error
}
