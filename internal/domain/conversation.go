package domain

import "time"

type Conversation struct {
	ID           ID            `json:"id"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Theme        *string       `json:"theme,omitempty"`
	Participants []Participant `json:"participants"`
	// Most recent messages, when the server preloads them.
	Messages []Message `json:"messages,omitempty"`
}

type Participant struct {
	ConversationID ID          `json:"conversationId"`
	UserID         ID          `json:"userId"`
	User           UserProfile `json:"user"`
	LastReadAt     *time.Time  `json:"lastReadAt,omitempty"`
}

// Peer returns the participant that is not the current user. In a 1:1
// conversation there is exactly one.
func (c *Conversation) Peer(currentUserID ID) *Participant {
	if c == nil {
		return nil
	}
	for i := range c.Participants {
		if c.Participants[i].UserID != currentUserID {
			return &c.Participants[i]
		}
	}
	return nil
}

// ThemeOrDefault returns the conversation theme token, or fallback when unset.
func (c *Conversation) ThemeOrDefault(fallback string) string {
	if c == nil || c.Theme == nil || *c.Theme == "" {
		return fallback
	}
	return *c.Theme
}
