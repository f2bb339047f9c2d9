package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDDecodesStringsAndNumbers(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"u1","b":42,"c":null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, ID("u1"), payload.A)
	assert.Equal(t, ID("42"), payload.B)
	assert.True(t, payload.C.IsZero())
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	err := json.Unmarshal([]byte(`{"x":1}`), &id)
	assert.Error(t, err)
}

func TestConversationPeer(t *testing.T) {
	conv := &Conversation{
		ID: "42",
		Participants: []Participant{
			{ConversationID: "42", UserID: "u1", User: UserProfile{Name: "me"}},
			{ConversationID: "42", UserID: "u2", User: UserProfile{Name: "shop"}},
		},
	}

	peer := conv.Peer("u1")
	require.NotNil(t, peer)
	assert.Equal(t, ID("u2"), peer.UserID)

	var nilConv *Conversation
	assert.Nil(t, nilConv.Peer("u1"))
}

func TestConversationThemeOrDefault(t *testing.T) {
	theme := "rose"
	assert.Equal(t, "rose", (&Conversation{Theme: &theme}).ThemeOrDefault("default"))
	assert.Equal(t, "default", (&Conversation{}).ThemeOrDefault("default"))
}

func TestMessagePageHasMore(t *testing.T) {
	cursor := int64(10)
	assert.True(t, (&MessagePage{NextCursor: &cursor}).HasMore())
	assert.False(t, (&MessagePage{}).HasMore())
	var nilPage *MessagePage
	assert.False(t, nilPage.HasMore())
}
