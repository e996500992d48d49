package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit is applied to history fetches that carry no positive limit.
const DefaultHistoryLimit = 50

// MessageStore defines persistence operations for direct messages.
type MessageStore interface {
	Create(ctx context.Context, message Message) (Message, error)
	// GetConversation returns messages exchanged between a and b in either
	// direction, ascending by creation time and then by id. A non-positive
	// limit returns the whole conversation, otherwise the oldest limit messages.
	GetConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]Message, error)
}

// Message represents a stored direct message.
type Message struct {
	ID        uuid.UUID
	From      uuid.UUID
	To        uuid.UUID
	Text      string
	CreatedAt time.Time
}

// ConversationKey returns the same key for (a, b) and (b, a).
func ConversationKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}
