package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/stocklink/backend/internal/application/catalog"
	"github.com/stocklink/backend/internal/interfaces/http/middleware"
)

// SettingsHandler handles the application settings endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *catalogapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *catalogapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// RegisterRoutes registers settings routes on the API group
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.POST("", h.Update)
	}
}

// Get returns the current settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Update replaces the settings with the submitted values
func (h *SettingsHandler) Update(c *gin.Context) {
	var req catalogapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}
