package realtime

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/api/http/middleware"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

// TokenVerifier resolves an identity from a bearer token.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// Handler upgrades authenticated requests to WebSocket sessions.
type Handler struct {
	verifier TokenVerifier
	hub      *Hub
	messages MessageService
	cfg      Config
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

func NewHandler(verifier TokenVerifier, hub *Hub, messages MessageService, cfg Config, logger *logger.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		hub:      hub,
		messages: messages,
		cfg:      cfg.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// tokenFromRequest reads the token from the "token" query parameter,
// falling back to an "Authorization: Bearer" header.
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return middleware.BearerToken(r)
}

// Handle verifies the handshake token before upgrading. Refused requests
// get a 401 and never touch the hub.
func (h *Handler) Handle(c *gin.Context) {
	token := tokenFromRequest(c.Request)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "missing authorization token"})
		return
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Debug("Realtime handler: token rejected",
			"error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid authorization token"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Info("Realtime handler: upgrade failed",
			"user_id", identity.UserID,
			"error", err.Error())
		return
	}

	client := newClient(ws, identity.UserID, h.cfg, h.logger)
	session := newSession(client, h.hub, h.messages, identity, h.cfg, client.logger)
	session.Run(context.WithoutCancel(c.Request.Context()))
}
