package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/usersvc/backend/internal/model"
)

const (
	ServiceName    = "user-service"
	ServiceVersion = "1.0.0"
)

// Root godoc
// @Summary Service info
// @Tags health
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Service: ServiceName,
		Version: ServiceVersion,
		Status:  "running",
	})
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}
