// Package model defines the payload records delivered by the feed.
// Every event kind is decoded into a closed struct exactly once, at
// the feed boundary; malformed payloads are rejected there.
package model

import (
	"encoding/json"
	"fmt"
)

// ConversationType categorizes a conversation as delivered by the feed.
type ConversationType string

const (
	ConversationTypeChat ConversationType = "chat"
	ConversationTypeClub ConversationType = "club"
)

// Notifiable reports whether conversations of this type may produce
// message notifications. Other types (system, lobby) are ignored.
func (t ConversationType) Notifiable() bool {
	return t == ConversationTypeChat || t == ConversationTypeClub
}

// LastMessage is the most recent message payload embedded in a
// conversation update.
type LastMessage struct {
	// Body is the message text.
	Body string `json:"body"`

	// FromID identifies the sending user.
	FromID int64 `json:"fromId"`
}

// Conversation is a single conversation resource as pushed by the feed.
// The unread counter is maintained upstream; it is never computed locally.
type Conversation struct {
	// ID is the conversation identifier (a path segment on the feed).
	ID string `json:"id"`

	// Type is the conversation kind (chat, club, ...).
	Type ConversationType `json:"type"`

	// Name is the display name shown on notifications.
	Name string `json:"name"`

	// UnreadMessageCount is the upstream unread counter.
	UnreadMessageCount int `json:"unreadMessageCount"`

	// LastMessage is the newest message, absent on bare counter updates.
	LastMessage *LastMessage `json:"lastMessage"`
}

// ParseConversation decodes a conversation update payload. Malformed
// payloads are rejected here so nothing downstream touches raw JSON.
func ParseConversation(data json.RawMessage) (*Conversation, error) {
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if c.UnreadMessageCount < 0 {
		return nil, fmt.Errorf("conversation %q: negative unread count %d", c.ID, c.UnreadMessageCount)
	}
	return &c, nil
}
