package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/service"
)

type Message struct {
	messageService MessageService
	notifier       Notifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewMessage(
	messageService MessageService,
	notifier Notifier,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Message {
	return &Message{
		messageService: messageService,
		notifier:       notifier,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Send persists a message and pushes it to the recipient when online.
func (h *Message) Send(c *gin.Context) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: malformed request body", model.ErrValidation))
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), service.SendParams{
		From: identity.UserID,
		To:   req.To,
		Text: req.Text,
	})
	if err != nil {
		h.logger.Error("Message handler: send failed",
			"user_id", identity.UserID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyRecipient(msg)
	}

	c.JSON(http.StatusOK, dto.NewMessage(msg))
}

// History returns the full conversation with :peerId, oldest first.
func (h *Message) History(c *gin.Context) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	messages, err := h.messageService.Conversation(c.Request.Context(), service.ConversationParams{
		UserID: identity.UserID,
		PeerID: c.Param("peerId"),
	})
	if err != nil {
		h.logger.Error("Message handler: history failed",
			"user_id", identity.UserID,
			"peer_id", c.Param("peerId"),
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessages(messages))
}

// Archive exports the conversation with :peerId to object storage.
func (h *Message) Archive(c *gin.Context) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	key, err := h.messageService.Archive(c.Request.Context(), identity.UserID, c.Param("peerId"))
	if err != nil {
		h.logger.Error("Message handler: archive failed",
			"user_id", identity.UserID,
			"peer_id", c.Param("peerId"),
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ArchiveResponse{Key: key})
}
