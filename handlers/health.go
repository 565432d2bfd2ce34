// File: handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookly/utils"
)

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
