package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
	"github.com/denisAlshanov/mediagrab/internal/services/scratch"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

const (
	ServiceName    = "youtube-downloader"
	ServiceVersion = "1.0.0"
)

type HealthHandler struct {
	engine    engine.Engine
	workspace *scratch.Workspace
}

func NewHealthHandler(eng engine.Engine, workspace *scratch.Workspace) *HealthHandler {
	return &HealthHandler{
		engine:    eng,
		workspace: workspace,
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Report that the service process is up
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   ServiceVersion,
		Engine:    h.engine.Name(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check that the extraction engine and scratch space are usable
// @Tags health
// @Produce json
// @Success 200 {object} models.ReadinessResponse
// @Failure 503 {object} models.ReadinessResponse
// @Router /api/ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	response := models.ReadinessResponse{
		Ready:     true,
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    make(map[string]models.CheckResult),
	}

	response.Checks["engine"] = h.checkEngine(ctx)
	response.Checks["scratch"] = h.checkScratch(ctx)

	for _, check := range response.Checks {
		if !check.Ready {
			response.Ready = false
			break
		}
	}

	if !response.Ready {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Directory godoc
// @Summary List available endpoints
// @Tags health
// @Produce json
// @Success 200 {object} models.DirectoryResponse
// @Router / [get]
func (h *HealthHandler) Directory(c *gin.Context) {
	c.JSON(http.StatusOK, models.DirectoryResponse{
		Service: "YouTube Downloader API",
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"health":   "GET /api/health",
			"ready":    "GET /api/ready",
			"info":     "POST /api/info",
			"download": "POST /api/download",
			"docs":     "GET /swagger/index.html",
		},
		Note: "Files are streamed directly and never stored on the server",
	})
}

func (h *HealthHandler) checkEngine(ctx context.Context) models.CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.engine.Check(checkCtx); err != nil {
		utils.LogError(ctx, "Engine readiness check failed", err)
		return models.CheckResult{Ready: false, Error: err.Error()}
	}
	return models.CheckResult{Ready: true}
}

func (h *HealthHandler) checkScratch(ctx context.Context) models.CheckResult {
	if err := h.workspace.Writable(); err != nil {
		utils.LogError(ctx, "Scratch readiness check failed", err)
		return models.CheckResult{Ready: false, Error: err.Error()}
	}
	return models.CheckResult{Ready: true}
}
