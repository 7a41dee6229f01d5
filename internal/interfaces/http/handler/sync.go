package handler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/stocklink/backend/internal/application/sync"
	syncdomain "github.com/stocklink/backend/internal/domain/sync"
)

// SyncHandler streams synchronization runs over Server-Sent Events
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
	logger      *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{syncService: syncService, logger: logger}
}

// RegisterRoutes registers sync routes on the API group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("/sync", h.stream(syncapp.KindInventory))
		products.GET("/sync-price", h.stream(syncapp.KindPrice))
		products.GET("/sync-sales", h.stream(syncapp.KindSales))
	}
}

// stream returns a handler that runs one sync kind and streams its events
func (h *SyncHandler) stream(kind syncapp.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := parseSyncOptions(c)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		events, err := h.syncService.Run(c.Request.Context(), kind, opts)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Writer.Flush()

		// After a disconnect the stream must still be drained: the run keeps
		// going and blocks on a full buffer until its events are consumed.
		disconnected := c.Request.Context().Done()
		writing := true
		for ev := range events {
			if writing {
				select {
				case <-disconnected:
					h.logger.Info("sync stream client disconnected",
						zap.String("sync_kind", string(kind)))
					writing = false
				default:
					h.writeEvent(c, ev)
				}
			}
		}
	}
}

// writeEvent writes one event as an SSE data frame
func (h *SyncHandler) writeEvent(c *gin.Context, ev syncdomain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode sync event", zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}

// parseSyncOptions reads the optional product_ids query filter
func parseSyncOptions(c *gin.Context) (syncapp.Options, error) {
	var opts syncapp.Options

	raw := strings.TrimSpace(c.Query("product_ids"))
	if raw == "" {
		return opts, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return opts, fmt.Errorf("invalid product ID %q", part)
		}
		opts.ProductIDs = append(opts.ProductIDs, id)
	}
	return opts, nil
}
