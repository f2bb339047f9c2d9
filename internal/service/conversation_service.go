package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
)

type ConversationAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	CreateConversation(ctx context.Context, otherUserID domain.ID) (*domain.Conversation, error)
	MarkRead(ctx context.Context, conversationID domain.ID) error
}

type ConversationService struct {
	api           ConversationAPI
	notifications repository.NotificationStore
}

func NewConversationService(api ConversationAPI, notifications repository.NotificationStore) *ConversationService {
	return &ConversationService{api: api, notifications: notifications}
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	Conversation domain.Conversation `json:"conversation"`
	Peer         *domain.Participant `json:"peer,omitempty"`
	LastMessage  *domain.Message     `json:"lastMessage,omitempty"`
	Unread       int                 `json:"unread"`
}

// ListConversations returns the user's conversations, most recently active
// first, with the locally known unread counts.
func (s *ConversationService) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	me, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	convs, err := s.api.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	unread := map[domain.ID]int{}
	if s.notifications != nil {
		notes, err := s.notifications.List(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("listing notifications: %w", err)
		}
		for _, n := range notes {
			if !n.Read {
				unread[n.ConversationID] = n.UnreadCount
			}
		}
	}

	out := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		conv := convs[i]
		summary := ConversationSummary{
			Conversation: conv,
			Peer:         conv.Peer(me.ID),
			Unread:       unread[conv.ID],
		}
		if n := len(conv.Messages); n > 0 {
			last := conv.Messages[n-1]
			summary.LastMessage = &last
		}
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lastActivity(out[i]).After(lastActivity(out[j]))
	})
	return out, nil
}

func lastActivity(s ConversationSummary) time.Time {
	if s.LastMessage != nil && s.LastMessage.CreatedAt.After(s.Conversation.UpdatedAt) {
		return s.LastMessage.CreatedAt
	}
	return s.Conversation.UpdatedAt
}

// GetOrCreateConversation opens the 1:1 conversation with otherUserID,
// creating it on the server if needed.
func (s *ConversationService) GetOrCreateConversation(ctx context.Context, otherUserID domain.ID) (*domain.Conversation, error) {
	me, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if otherUserID.IsZero() || otherUserID == me.ID {
		return nil, ErrCannotChatSelf
	}

	conv, err := s.api.CreateConversation(ctx, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return conv, nil
}

// MarkRead marks the conversation read on the server and clears the local
// notification for it.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID domain.ID) error {
	if err := s.api.MarkRead(ctx, conversationID); err != nil {
		return err
	}
	if s.notifications != nil {
		return s.notifications.MarkConversationRead(ctx, conversationID)
	}
	return nil
}
