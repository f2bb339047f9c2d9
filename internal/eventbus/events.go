package eventbus

import (
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/observability"
)

// Name is one of the fixed events relayed on the process-wide Bus.
type Name string

const (
	PeerOnline         Name = "peer:online"
	PeerOffline        Name = "peer:offline"
	Connected          Name = "socket:connected"
	Disconnected       Name = "socket:disconnected"
	ConversationUnread Name = "conversation:unread"
	ConversationRead   Name = "conversation:read"
	Typing             Name = "typing:start"
	StopTyping         Name = "typing:stop"
)

// Names lists every bus event.
var Names = []Name{
	PeerOnline, PeerOffline,
	Connected, Disconnected,
	ConversationUnread, ConversationRead,
	Typing, StopTyping,
}

// Bus is the process-wide relay.
type Bus = Emitter[Name]

func New(logger *zap.Logger, metrics *observability.Metrics) *Bus {
	return NewEmitter[Name](logger, metrics)
}

// PresencePayload accompanies PeerOnline and PeerOffline.
type PresencePayload struct {
	UserID domain.ID `json:"userId"`
}

// ConnectionPayload accompanies Connected and Disconnected.
type ConnectionPayload struct {
	Reason string `json:"reason,omitempty"`
}

// TypingPayload accompanies Typing and StopTyping. ConversationID is empty
// when the server does not say which room the signal belongs to.
type TypingPayload struct {
	UserID         domain.ID `json:"userId"`
	ConversationID domain.ID `json:"conversationId,omitempty"`
}

// ConversationPayload accompanies ConversationUnread and ConversationRead.
type ConversationPayload struct {
	ConversationID domain.ID       `json:"conversationId"`
	UserID         domain.ID       `json:"userId,omitempty"`
	UnreadCount    int             `json:"unreadCount,omitempty"`
	LastMessage    *domain.Message `json:"lastMessage,omitempty"`
}
