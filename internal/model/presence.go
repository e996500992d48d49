package model

import "github.com/google/uuid"

// Conn is a live real-time connection that can receive encoded events.
type Conn interface {
	ID() string
	Deliver(payload []byte) error
}

// PresenceRegistry maps online user ids to their current connection.
type PresenceRegistry interface {
	Register(userID uuid.UUID, conn Conn)
	Unregister(userID uuid.UUID)
	// UnregisterIf removes the entry only while it still points at conn.
	UnregisterIf(userID uuid.UUID, conn Conn) bool
	Lookup(userID uuid.UUID) (Conn, bool)
	Count() int
}
