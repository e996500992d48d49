package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/service"
)

// MessageService persists and reads messages for sessions.
type MessageService interface {
	Send(ctx context.Context, params service.SendParams) (model.Message, error)
	Conversation(ctx context.Context, params service.ConversationParams) ([]model.Message, error)
}

type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Session serves one authenticated connection from attach to close.
// Requests are handled one at a time in the reader goroutine.
type Session struct {
	client   *Client
	hub      *Hub
	messages MessageService
	identity model.Identity
	cfg      Config
	state    atomic.Int32
	logger   *logger.Logger
}

func newSession(client *Client, hub *Hub, messages MessageService, identity model.Identity, cfg Config, logger *logger.Logger) *Session {
	s := &Session{
		client:   client,
		hub:      hub,
		messages: messages,
		identity: identity,
		cfg:      cfg,
		logger:   logger,
	}
	s.state.Store(int32(StateConnecting))
	return s
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Run attaches the session and serves requests until the connection ends.
// ctx must not be cancelled by the connection closing, so that a store
// write already started completes.
func (s *Session) Run(ctx context.Context) {
	go s.client.writeLoop()

	s.hub.Attach(s.client)
	s.state.Store(int32(StateAuthenticated))

	defer func() {
		s.state.Store(int32(StateClosed))
		s.hub.Detach(s.client)
		s.client.Close()
	}()

	ws := s.client.ws
	ws.SetReadLimit(s.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Debug("Realtime session: read failed",
					"error", err.Error())
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.replyError("", "only text frames are supported")
			continue
		}
		s.dispatch(ctx, data)
	}
}

func (s *Session) dispatch(ctx context.Context, data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
		s.replyError("", "malformed frame")
		return
	}

	switch frame.Event {
	case EventChatMessage:
		var req SendMessage
		if err := decodeData(frame.Data, &req); err != nil {
			s.replyError(frame.Event, err.Error())
			return
		}
		s.handleSend(ctx, req)
	case EventFetchMessages:
		var req FetchMessages
		if err := decodeData(frame.Data, &req); err != nil {
			s.replyError(frame.Event, err.Error())
			return
		}
		s.handleFetch(ctx, req)
	default:
		s.replyError(frame.Event, "unknown event")
	}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", model.ErrValidation)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed data", model.ErrValidation)
	}
	return nil
}

func (s *Session) handleSend(ctx context.Context, req SendMessage) {
	msg, err := s.messages.Send(ctx, service.SendParams{
		From: s.identity.UserID,
		To:   req.To,
		Text: req.Text,
	})
	if err != nil {
		s.replyError(EventChatMessage, err.Error())
		return
	}

	// One encoding shared by sender and recipient.
	payload, err := encode(EventChatMessage, dto.NewMessage(msg))
	if err != nil {
		s.replyError(EventChatMessage, err.Error())
		return
	}

	s.deliver(payload)
	if msg.To != s.identity.UserID {
		s.hub.SendTo(msg.To, payload)
	}
}

func (s *Session) handleFetch(ctx context.Context, req FetchMessages) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}

	messages, err := s.messages.Conversation(ctx, service.ConversationParams{
		UserID: s.identity.UserID,
		PeerID: req.WithUserID,
		Limit:  limit,
	})
	if err != nil {
		s.replyError(EventFetchMessages, err.Error())
		return
	}

	payload, err := encode(EventMessages, dto.NewMessages(messages))
	if err != nil {
		s.replyError(EventFetchMessages, err.Error())
		return
	}
	s.deliver(payload)
}

func (s *Session) replyError(event, message string) {
	payload, err := encode(EventError, ErrorEvent{Event: event, Message: message})
	if err != nil {
		s.logger.Error("Realtime session: failed to encode error", "error", err.Error())
		return
	}
	s.deliver(payload)
}

func (s *Session) deliver(payload []byte) {
	if err := s.client.Deliver(payload); err != nil && !errors.Is(err, ErrClientClosed) {
		s.logger.Warn("Realtime session: delivery failed", "error", err.Error())
	}
}
