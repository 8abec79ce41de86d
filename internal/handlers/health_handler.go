package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIVersion = "v1"

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// RegisterRoutes mounts /health/ on the versioned API group.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health/", h.Health)
}

// RegisterRootRoutes mounts /health/ on the unversioned /api group.
func (h *HealthHandler) RegisterRootRoutes(rg *gin.RouterGroup) {
	rg.GET("/health/", h.RootHealth)
}

// @Summary Liveness probe
// @Tags health
// @Router /api/v1/health/ [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Liveness probe with version
// @Tags health
// @Router /api/health/ [get]
func (h *HealthHandler) RootHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": APIVersion,
		"message": "Job Board API is running",
	})
}
