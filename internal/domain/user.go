package domain

// User is the authenticated identity returned by /auth/me.
type User struct {
	ID        ID      `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Role      string  `json:"role,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// UserProfile is the snapshot of a participant embedded in a conversation.
type UserProfile struct {
	Name      string  `json:"name"`
	IsActive  bool    `json:"isActive"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
