package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root answers liveness probes.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
