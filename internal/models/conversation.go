package models

import (
	"slices"
	"time"
)

// titleRuneLimit caps derived conversation titles before the ellipsis marker is appended.
const titleRuneLimit = 30

// Conversation represents a titled, ordered sequence of messages with an activity timestamp. Messages
// are kept in insertion order and are never re-sorted. ModelID records the model associated with the
// conversation at its last mutation, so reopening the conversation can restore the model selection.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"lastActivity"`
	ModelID      string    `json:"modelId,omitempty"`
}

// Clone returns a copy of the conversation whose message slice is independent of the receiver's.
func (c Conversation) Clone() Conversation {
	c.Messages = slices.Clone(c.Messages)
	return c
}

// DeriveTitle produces a conversation title from its first message text, truncated to thirty runes
// with an ellipsis marker when the text is longer.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleRuneLimit {
		return text
	}
	return string(runes[:titleRuneLimit]) + "..."
}
