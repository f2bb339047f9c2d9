package service

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

// InboxService keeps the local notification list in step with the unread
// and read events relayed on the Bus.
type InboxService struct {
	bus    *eventbus.Bus
	store  repository.NotificationStore
	clock  clockwork.Clock
	logger *zap.Logger

	mu   sync.Mutex
	subs []eventbus.Subscription
}

func NewInboxService(bus *eventbus.Bus, store repository.NotificationStore, clock clockwork.Clock, logger *zap.Logger) *InboxService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxService{
		bus:    bus,
		store:  store,
		clock:  clock,
		logger: logger.Named("inbox"),
	}
}

// Start subscribes to the Bus. Calling it twice is a no-op.
func (s *InboxService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) > 0 {
		return
	}
	s.subs = []eventbus.Subscription{
		eventbus.On(s.bus, eventbus.ConversationUnread, s.onUnread),
		eventbus.On(s.bus, eventbus.ConversationRead, s.onRead),
	}
}

func (s *InboxService) Stop() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		s.bus.Unsubscribe(sub)
	}
}

func (s *InboxService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	return s.store.List(ctx, limit)
}

// UnreadTotal sums the unread counts across conversations.
func (s *InboxService) UnreadTotal(ctx context.Context) (int, error) {
	notes, err := s.store.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range notes {
		if !n.Read {
			total += n.UnreadCount
		}
	}
	return total, nil
}

func (s *InboxService) onUnread(p eventbus.ConversationPayload) {
	if p.ConversationID.IsZero() {
		return
	}

	n := domain.Notification{
		ConversationID: p.ConversationID,
		SenderID:       p.UserID,
		UnreadCount:    p.UnreadCount,
		CreatedAt:      s.clock.Now(),
	}
	if m := p.LastMessage; m != nil {
		n.SenderID = m.SenderID
		n.Body = m.Body
		if n.Body == "" && m.ImageURL != nil {
			n.Body = ImagePlaceholderBody
		}
		if !m.CreatedAt.IsZero() {
			n.CreatedAt = m.CreatedAt
		}
	}

	if err := s.store.Add(context.Background(), n); err != nil {
		s.logger.Error("storing notification", zap.String("conversation_id", p.ConversationID.String()), zap.Error(err))
	}
}

func (s *InboxService) onRead(p eventbus.ConversationPayload) {
	if p.ConversationID.IsZero() {
		return
	}
	if err := s.store.MarkConversationRead(context.Background(), p.ConversationID); err != nil {
		s.logger.Error("marking notification read", zap.String("conversation_id", p.ConversationID.String()), zap.Error(err))
	}
}
