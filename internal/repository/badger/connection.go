package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type Config struct {
	Path     string
	InMemory bool
}

type Connection struct {
	db *badger.DB
}

// NewConnection opens an embedded Badger database at cfg.Path, or a
// purely in-memory one when cfg.InMemory is set.
func NewConnection(cfg Config) (*Connection, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLoggingLevel(badger.ERROR)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Connection{db: db}, nil
}

func (c *Connection) Ping(_ context.Context) error {
	if c.db == nil || c.db.IsClosed() {
		return fmt.Errorf("badger is closed")
	}
	return nil
}

func (c *Connection) Close() error {
	return c.db.Close()
}
