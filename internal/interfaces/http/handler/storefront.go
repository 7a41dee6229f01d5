package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stocklink/backend/internal/infrastructure/storefront"
	"github.com/stocklink/backend/internal/interfaces/http/dto"
	"github.com/stocklink/backend/internal/interfaces/http/middleware"
)

// StorefrontHandler verifies storefront credentials before they are saved
type StorefrontHandler struct {
	BaseHandler
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler() *StorefrontHandler {
	return &StorefrontHandler{}
}

// RegisterRoutes registers storefront routes on the API group
func (h *StorefrontHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sf := rg.Group("/storefront")
	{
		sf.POST("/test", h.Test)
		sf.POST("/locations", h.Locations)
	}
}

// CredentialsRequest carries storefront credentials to verify
type CredentialsRequest struct {
	URL         string `json:"url" binding:"required,max=255"`
	AccessToken string `json:"access_token" binding:"required,max=255"`
}

// Test verifies that the submitted credentials can reach the store
func (h *StorefrontHandler) Test(c *gin.Context) {
	client, ok := h.buildClient(c)
	if !ok {
		return
	}

	shop, err := client.TestConnection(c.Request.Context())
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeSourceUnavailable), dto.ErrCodeSourceUnavailable, err.Error())
		return
	}
	h.Success(c, shop)
}

// Locations lists the store's inventory locations so the operator can pick one
func (h *StorefrontHandler) Locations(c *gin.Context) {
	client, ok := h.buildClient(c)
	if !ok {
		return
	}

	locations, err := client.Locations(c.Request.Context())
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeSourceUnavailable), dto.ErrCodeSourceUnavailable, err.Error())
		return
	}
	h.Success(c, locations)
}

func (h *StorefrontHandler) buildClient(c *gin.Context) (*storefront.Client, bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return nil, false
	}

	client, err := storefront.NewClient(storefront.NewConfig(req.URL, req.URL, req.AccessToken, ""))
	if err != nil {
		h.BadRequest(c, err.Error())
		return nil, false
	}
	return client, true
}
