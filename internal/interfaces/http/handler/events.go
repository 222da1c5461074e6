package handler

import (
	"github.com/gin-gonic/gin"

	appintegration "github.com/storebridge/backend/internal/application/integration"
)

// EventRequest is a storefront change notification.
type EventRequest struct {
	Kind     string `json:"kind" binding:"required"`
	EntityID int64  `json:"entity_id" binding:"required,min=1"`
}

// EventHandler accepts storefront change notifications and routes them to
// the matching sync operation.
type EventHandler struct {
	BaseHandler
	triggers *appintegration.TriggerHandler
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(triggers *appintegration.TriggerHandler) *EventHandler {
	return &EventHandler{triggers: triggers}
}

// RegisterRoutes registers event routes
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.Receive)
}

// Receive handles one storefront event.
func (h *EventHandler) Receive(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.triggers.Handle(c.Request.Context(), appintegration.Event{
		Kind:     appintegration.EventKind(req.Kind),
		EntityID: req.EntityID,
	})
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.Success(c, toSyncResultResponse(result))
}
