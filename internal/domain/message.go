package domain

import (
	"io"
	"time"
)

type Message struct {
	ID             int64      `json:"id"`
	ConversationID ID         `json:"conversationId"`
	SenderID       ID         `json:"senderId"`
	Body           string     `json:"body"`
	ImageURL       *string    `json:"imageUrl,omitempty"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// MessagePage is one page of history, oldest first. NextCursor is nil when
// there is nothing older left on the server.
type MessagePage struct {
	Items      []Message `json:"items"`
	NextCursor *int64    `json:"nextCursor"`
}

func (p *MessagePage) HasMore() bool {
	return p != nil && p.NextCursor != nil
}

// Image is a locally picked image waiting to be uploaded.
type Image struct {
	Name        string
	ContentType string
	Data        io.Reader
}
