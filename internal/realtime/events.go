package realtime

import (
	"encoding/json"
	"fmt"
)

// Event names used on the wire.
const (
	EventConnectionStatus = "connection-status"
	EventPresence         = "presence"
	EventChatMessage      = "chat-message"
	EventFetchMessages    = "fetch-messages"
	EventMessages         = "messages"
	EventError            = "error"
)

const statusConnected = "Connected"

// Frame is the envelope of every text frame in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ConnectionStatus struct {
	Status string `json:"status"`
}

type Presence struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type SendMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type FetchMessages struct {
	WithUserID string `json:"withUserId"`
	Limit      int    `json:"limit,omitempty"`
}

// ErrorEvent reports a failed request; Event names the request that failed.
type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Frame{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", event, err)
	}
	return frame, nil
}
