package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/parley-server/internal/api/dto"
	"github.com/dtroode/parley-server/internal/model"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrDuplicateResource),
		errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrArchiveDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: model.ErrInvalidCredentials.Error()})
}
