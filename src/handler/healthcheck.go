package handler

import (
	"github.com/gin-gonic/gin"
)

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /health [get]
func handleHealthCheck(c *gin.Context) {
	respondWithSuccess(c, "ok")
}
