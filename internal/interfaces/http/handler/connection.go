package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storebridge/backend/internal/infrastructure/health"
)

// ConnectionStatusResponse reports the remote connection state.
type ConnectionStatusResponse struct {
	Valid   bool   `json:"valid"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ConnectionHandler exposes the remote connection monitor.
type ConnectionHandler struct {
	BaseHandler
	monitor *health.Monitor
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(monitor *health.Monitor) *ConnectionHandler {
	return &ConnectionHandler{monitor: monitor}
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conn := rg.Group("/connection")
	{
		conn.GET("/status", h.Status)
		conn.POST("/check", h.Check)
	}
}

// Status returns the cached connection state without probing the remote.
func (h *ConnectionHandler) Status(c *gin.Context) {
	h.Success(c, ConnectionStatusResponse{
		Valid:   h.monitor.IsValid(c.Request.Context()),
		Version: h.monitor.Version(),
	})
}

// Check forces a fresh probe of the remote API.
func (h *ConnectionHandler) Check(c *gin.Context) {
	valid, err := h.monitor.Check(c.Request.Context())
	resp := ConnectionStatusResponse{
		Valid:   valid,
		Version: h.monitor.Version(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	h.Success(c, resp)
}
