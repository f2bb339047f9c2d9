package ws

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
)

// EventType is the "type" of a wire envelope.
type EventType string

// Event types - Connection lifecycle, raised locally by Conn
const (
	EventConnect    EventType = "connect"
	EventDisconnect EventType = "disconnect"
)

// Event types - Server → Client
const (
	EventUserOnline         EventType = "user_online"
	EventUserOffline        EventType = "user_offline"
	EventMessageNew         EventType = "message:new"
	EventMessageRead        EventType = "message:read"
	EventConversationUnread EventType = "conversation:unread"
	EventConversationRead   EventType = "conversation:read"
	EventThemeUpdated       EventType = "theme:updated"
	EventTyping             EventType = "typing"
	EventStopTyping         EventType = "stop_typing"
)

// Event types - Client → Server. typing and stop_typing travel both ways.
const (
	EventJoinConversation  EventType = "join_conversation"
	EventLeaveConversation EventType = "leave_conversation"
	EventMarkRead          EventType = "mark_read"
	EventSendMessage       EventType = "send_message"
	EventThemeChanged      EventType = "theme_updated"
)

// Envelope is the frame exchanged with the chat server.
type Envelope struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

func NewEnvelope(eventType EventType, payload any) (*Envelope, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return &Envelope{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}

// --- Client → Server payloads ---

type SendMessagePayload struct {
	ConversationID domain.ID `json:"conversationId"`
	Body           string    `json:"body"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Nonce          string    `json:"nonce,omitempty"`
}

// ThemePayload is sent as theme_updated and received as theme:updated.
type ThemePayload struct {
	ConversationID domain.ID `json:"conversationId"`
	Theme          string    `json:"theme"`
}

// --- Server → Client payloads ---

// UserPayload names the user behind presence, typing and read events. The
// server sends either {"userId": ...} or the bare id.
type UserPayload struct {
	UserID         domain.ID `json:"userId"`
	ConversationID domain.ID `json:"conversationId,omitempty"`
}

func (p *UserPayload) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		return json.Unmarshal(trimmed, &p.UserID)
	}
	type plain UserPayload
	return json.Unmarshal(data, (*plain)(p))
}

type MessagePayload struct {
	domain.Message
}

type DisconnectPayload struct {
	Reason string `json:"reason,omitempty"`
}
