package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
)

type NotificationRepo struct {
	pool    *pgxpool.Pool
	profile string
}

func NewNotificationRepo(pool *pgxpool.Pool, profile string) *NotificationRepo {
	return &NotificationRepo{pool: pool, profile: profile}
}

// Add upserts the notice for its conversation. A zero UnreadCount bumps the
// stored count, or restarts it at one when the stored notice was read.
func (r *NotificationRepo) Add(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO chat_notifications (profile, conversation_id, sender_id, body, unread_count, read, created_at)
		VALUES ($1, $2, $3, $4, GREATEST($5::int, 1), false, $6)
		ON CONFLICT (profile, conversation_id) DO UPDATE SET
			sender_id = EXCLUDED.sender_id,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at,
			read = false,
			unread_count = CASE
				WHEN $5::int > 0 THEN $5::int
				WHEN chat_notifications.read THEN 1
				ELSE chat_notifications.unread_count + 1
			END`
	_, err := r.pool.Exec(ctx, query,
		r.profile, n.ConversationID.String(), n.SenderID.String(), n.Body, n.UnreadCount, n.CreatedAt,
	)
	return err
}

func (r *NotificationRepo) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	query := `
		SELECT conversation_id, sender_id, body, unread_count, read, created_at
		FROM chat_notifications
		WHERE profile = $1
		ORDER BY created_at DESC`
	args := []any{r.profile}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n              domain.Notification
			conversationID string
			senderID       string
		)
		if err := rows.Scan(&conversationID, &senderID, &n.Body, &n.UnreadCount, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.ConversationID = domain.ID(conversationID)
		n.SenderID = domain.ID(senderID)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkConversationRead(ctx context.Context, conversationID domain.ID) error {
	query := `
		UPDATE chat_notifications SET read = true, unread_count = 0
		WHERE profile = $1 AND conversation_id = $2`
	_, err := r.pool.Exec(ctx, query, r.profile, conversationID.String())
	return err
}

func (r *NotificationRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_notifications WHERE profile = $1", r.profile)
	return err
}
