package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/parley-server/internal/logger"
)

// Logging logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	status := c.Writer.Status()
	// A hijacked writer keeps reporting 200 after the 101 went out.
	upgraded := status == http.StatusOK &&
		strings.EqualFold(c.Request.Header.Get("Upgrade"), "websocket")
	if upgraded {
		status = http.StatusSwitchingProtocols
	}
	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", status,
	}

	switch {
	case status >= 500:
		l.logger.Error("HTTP request failed", args...)
	case upgraded:
		l.logger.Debug("HTTP connection upgraded", args...)
	default:
		l.logger.Info("HTTP request completed", args...)
	}
}
