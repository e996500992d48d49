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

// Auth handles signup and login endpoints.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

func bindCredentials(c *gin.Context) (service.Credentials, error) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.Credentials{}, fmt.Errorf("%w: email and password required", model.ErrValidation)
	}
	return service.Credentials{Email: req.Email, Password: req.Password}, nil
}

// Signup registers a new user.
func (h *Auth) Signup(c *gin.Context) {
	params, err := bindCredentials(c)
	if err != nil {
		handleError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), params)
	if err != nil {
		h.logger.Info("Auth handler: signup failed",
			"email", params.Email,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccount(user))
}

// Login exchanges credentials for a bearer token.
func (h *Auth) Login(c *gin.Context) {
	params, err := bindCredentials(c)
	if err != nil {
		handleError(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), params)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", params.Email,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: res.Token,
		User:  dto.NewAccount(res.User),
	})
}
