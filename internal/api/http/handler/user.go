package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

type User struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// List returns every user except the caller.
func (h *User) List(c *gin.Context) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request.Context())
	if !ok {
		unauthorized(c)
		return
	}

	users, err := h.userService.ListOthers(c.Request.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("User handler: list failed",
			"user_id", identity.UserID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUsers(users))
}
