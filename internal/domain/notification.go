package domain

import "time"

// Notification is a locally persisted notice about unread chat activity.
type Notification struct {
	ConversationID ID        `json:"conversationId"`
	SenderID       ID        `json:"senderId,omitempty"`
	Body           string    `json:"body"`
	UnreadCount    int       `json:"unreadCount"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
