package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

var (
	ErrClientClosed = errors.New("connection closed")
	ErrSlowConsumer = errors.New("outbound queue full")
)

var _ model.Conn = (*Client)(nil)

// Client is one authenticated WebSocket connection. Outbound frames go
// through a bounded queue drained by a single writer goroutine.
type Client struct {
	id     string
	userID uuid.UUID
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	cfg    Config
	logger *logger.Logger
}

func newClient(ws *websocket.Conn, userID uuid.UUID, cfg Config, logger *logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, cfg.SendBuffer),
		done:   make(chan struct{}),
		cfg:    cfg,
		logger: logger.With("conn_id", id, "user_id", userID),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Deliver enqueues payload without blocking. A full queue closes the
// connection.
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn("Realtime client: closing slow consumer",
			"queued", len(c.send))
		c.abort()
		return ErrSlowConsumer
	}
}

// Close sends a close frame, stops the writer and closes the socket.
// Safe to call repeatedly.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.cfg.WriteWait))
		_ = c.ws.Close()
	})
}

// abort closes the socket without a close frame. Deliver calls it while
// the hub lock may be held, so it must not block on the network.
func (c *Client) abort() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("Realtime client: write failed",
					"error", err.Error())
				c.abort()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				c.logger.Debug("Realtime client: ping failed",
					"error", err.Error())
				c.abort()
				return
			}
		}
	}
}
