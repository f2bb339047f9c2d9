package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

var notificationPrefix = []byte("notify/")

func notificationKey(id domain.ID) []byte {
	return append(append([]byte{}, notificationPrefix...), id.String()...)
}

type NotificationRepo struct {
	db *badger.DB
}

func NewNotificationRepo(db *badger.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Add(ctx context.Context, n domain.Notification) error {
	return r.db.Update(func(txn *badger.Txn) error {
		prev, err := getNotification(txn, n.ConversationID)
		if err != nil {
			return err
		}
		return putNotification(txn, repository.MergeNotification(prev, n))
	})
}

func (r *NotificationRepo) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = notificationPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var n domain.Notification
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.SortNotifications(out, limit), nil
}

func (r *NotificationRepo) MarkConversationRead(ctx context.Context, conversationID domain.ID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		n, err := getNotification(txn, conversationID)
		if err != nil || n.ConversationID.IsZero() {
			return err
		}
		n.Read = true
		n.UnreadCount = 0
		return putNotification(txn, n)
	})
}

func (r *NotificationRepo) Clear(ctx context.Context) error {
	return r.db.DropPrefix(notificationPrefix)
}

// getNotification returns the zero value when nothing is stored.
func getNotification(txn *badger.Txn, id domain.ID) (domain.Notification, error) {
	var n domain.Notification
	item, err := txn.Get(notificationKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &n)
	})
	return n, err
}

func putNotification(txn *badger.Txn, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return txn.Set(notificationKey(n.ConversationID), data)
}
