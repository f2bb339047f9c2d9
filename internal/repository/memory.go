package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
)

// MemoryTokenStore is a process local TokenStore.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

func (s *MemoryTokenStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(ctx context.Context) error {
	return s.SaveToken(ctx, "")
}

// MemoryNotificationStore is a process local NotificationStore.
type MemoryNotificationStore struct {
	mu    sync.Mutex
	items map[domain.ID]domain.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{items: make(map[domain.ID]domain.Notification)}
}

func (s *MemoryNotificationStore) Add(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[n.ConversationID] = MergeNotification(s.items[n.ConversationID], n)
	return nil
}

func (s *MemoryNotificationStore) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	return SortNotifications(out, limit), nil
}

func (s *MemoryNotificationStore) MarkConversationRead(ctx context.Context, conversationID domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[conversationID]; ok {
		n.Read = true
		n.UnreadCount = 0
		s.items[conversationID] = n
	}
	return nil
}

func (s *MemoryNotificationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[domain.ID]domain.Notification)
	return nil
}

// MergeNotification folds an incoming notice into the stored one for the
// same conversation. A zero UnreadCount on the incoming notice means "one
// more than before".
func MergeNotification(prev, next domain.Notification) domain.Notification {
	count := next.UnreadCount
	if count == 0 {
		count = 1
		if !prev.Read {
			count += prev.UnreadCount
		}
	}
	next.UnreadCount = count
	next.Read = false
	return next
}

// SortNotifications orders newest first and truncates to limit when limit > 0.
func SortNotifications(items []domain.Notification, limit int) []domain.Notification {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
