// Package presence tracks which users currently hold an authenticated
// real-time connection in this process.
package presence

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/parley-server/internal/model"
)

// Registry is an in-memory, mutex-guarded PresenceRegistry.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]model.Conn
}

var _ model.PresenceRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]model.Conn)}
}

// Register inserts or replaces the entry for userID. A replaced
// connection is neither notified nor closed.
func (r *Registry) Register(userID uuid.UUID, conn model.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = conn
}

// Unregister removes the entry for userID, whichever connection holds it.
func (r *Registry) Unregister(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// UnregisterIf removes the entry for userID only if it still belongs to conn.
func (r *Registry) UnregisterIf(userID uuid.UUID, conn model.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(r.entries, userID)
	return true
}

// Lookup returns the connection registered for userID.
func (r *Registry) Lookup(userID uuid.UUID) (model.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.entries[userID]
	return conn, ok
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
