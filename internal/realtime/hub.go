package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

// Hub tracks every attached connection and fans out presence changes.
// Registry mutation and the matching broadcast happen under one lock, so
// every connection observes presence changes in mutation order.
type Hub struct {
	mu                 sync.Mutex
	registry           model.PresenceRegistry
	clients            map[string]*Client
	unconditionalEvict bool
	logger             *logger.Logger
}

func NewHub(registry model.PresenceRegistry, unconditionalEvict bool, logger *logger.Logger) *Hub {
	return &Hub{
		registry:           registry,
		clients:            make(map[string]*Client),
		unconditionalEvict: unconditionalEvict,
		logger:             logger,
	}
}

// Attach registers c as its user's connection, confirms the connection
// to c and announces the user as online to everyone.
func (h *Hub) Attach(c *Client) {
	status, err := encode(EventConnectionStatus, ConnectionStatus{Status: statusConnected})
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode connection status", "error", err.Error())
		return
	}
	online, err := encode(EventPresence, Presence{UserID: c.userID.String(), Online: true})
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode presence", "error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// c is unreachable through the registry until its own frames are queued.
	_ = c.Deliver(status)
	_ = c.Deliver(online)
	h.broadcastLocked(online)
	h.registry.Register(c.userID, c)
	h.clients[c.id] = c

	h.logger.Info("Realtime hub: user connected",
		"user_id", c.userID,
		"conn_id", c.id,
		"online_users", h.registry.Count())
}

// Detach removes c. By default the presence entry is only removed while
// it still points at c, and the offline broadcast is skipped when a newer
// connection of the same user holds the entry.
func (h *Hub) Detach(c *Client) {
	offline, err := encode(EventPresence, Presence{UserID: c.userID.String(), Online: false})
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode presence", "error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)

	removed := true
	if h.unconditionalEvict {
		h.registry.Unregister(c.userID)
	} else {
		removed = h.registry.UnregisterIf(c.userID, c)
	}

	if removed {
		h.broadcastLocked(offline)
	}

	h.logger.Info("Realtime hub: user disconnected",
		"user_id", c.userID,
		"conn_id", c.id,
		"presence_removed", removed,
		"online_users", h.registry.Count())
}

// SendTo delivers payload to userID's current connection, if any.
func (h *Hub) SendTo(userID uuid.UUID, payload []byte) bool {
	conn, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}
	if err := conn.Deliver(payload); err != nil {
		h.logger.Warn("Realtime hub: delivery failed",
			"user_id", userID,
			"conn_id", conn.ID(),
			"error", err.Error())
		return false
	}
	return true
}

// NotifyRecipient pushes a message persisted outside a real-time session
// to its recipient when online.
func (h *Hub) NotifyRecipient(message model.Message) {
	payload, err := encode(EventChatMessage, dto.NewMessage(message))
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode message", "error", err.Error())
		return
	}
	h.SendTo(message.To, payload)
}

// Online reports how many users hold a presence entry.
func (h *Hub) Online() int {
	return h.registry.Count()
}

// Connections reports how many connections are attached.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll closes every attached connection. Their sessions then detach
// through the normal path.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

func (h *Hub) broadcastLocked(payload []byte) {
	for _, c := range h.clients {
		if err := c.Deliver(payload); err != nil {
			h.logger.Debug("Realtime hub: broadcast skipped connection",
				"conn_id", c.id,
				"error", err.Error())
		}
	}
}
