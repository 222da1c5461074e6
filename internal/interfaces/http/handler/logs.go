package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/interfaces/http/dto"
)

// SyncLogEntryResponse is the wire form of one audit trail row.
type SyncLogEntryResponse struct {
	ID        int64     `json:"id"`
	SyncType  string    `json:"sync_type"`
	LocalID   int64     `json:"local_id"`
	RemoteID  int64     `json:"remote_id,omitempty"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderHistoryResponse is the wire form of the per-order sync summary.
type OrderHistoryResponse struct {
	OrderID         int64     `json:"order_id"`
	RemoteOrderID   int64     `json:"remote_order_id,omitempty"`
	RemoteInvoiceID int64     `json:"remote_invoice_id,omitempty"`
	Status          string    `json:"status"`
	SyncType        string    `json:"sync_type"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	LastSyncAt      time.Time `json:"last_sync_at"`
}

// logQuery binds the audit trail filters.
type logQuery struct {
	dto.ListRequest
	SyncType  string `form:"sync_type"`
	Status    string `form:"status"`
	LocalID   int64  `form:"local_id"`
	Direction string `form:"direction"`
}

// PurgeRequest controls how much of the audit trail a purge keeps.
type PurgeRequest struct {
	// OlderThanDays overrides the configured retention when positive
	OlderThanDays int `json:"older_than_days" binding:"omitempty,min=1"`
}

// LogHandler serves the sync audit trail and the per-order history.
type LogHandler struct {
	BaseHandler
	logbook       integration.SyncLogRepository
	history       integration.OrderSyncHistoryRepository
	retentionDays int
}

// NewLogHandler creates a new LogHandler. retentionDays is the default purge
// cutoff when a request does not carry one.
func NewLogHandler(logbook integration.SyncLogRepository, history integration.OrderSyncHistoryRepository, retentionDays int) *LogHandler {
	return &LogHandler{logbook: logbook, history: history, retentionDays: retentionDays}
}

// RegisterRoutes registers log routes
func (h *LogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.GET("/logs", h.List)
		sync.POST("/logs/purge", h.Purge)
		sync.GET("/orders/:id/history", h.OrderHistory)
		sync.GET("/orders/history", h.ListOrderHistory)
	}
}

// List returns a filtered page of the audit trail, newest first.
func (h *LogHandler) List(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	q.Normalize()

	entries, total, err := h.logbook.Query(c.Request.Context(), integration.SyncLogFilter{
		SyncType:  integration.SyncType(q.SyncType),
		Status:    integration.SyncStatus(q.Status),
		LocalID:   q.LocalID,
		Direction: integration.SyncDirection(q.Direction),
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]SyncLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, SyncLogEntryResponse{
			ID:        e.ID,
			SyncType:  e.SyncType.String(),
			LocalID:   e.LocalID,
			RemoteID:  e.RemoteID,
			Status:    e.Status.String(),
			Message:   e.Message,
			Direction: e.Direction.String(),
			CreatedAt: e.CreatedAt,
		})
	}
	h.SuccessWithMeta(c, out, total, q.Page, q.PageSize)
}

// Purge deletes audit trail entries older than the retention cutoff.
func (h *LogHandler) Purge(c *gin.Context) {
	var req PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	days := req.OlderThanDays
	if days <= 0 {
		days = h.retentionDays
	}
	if days <= 0 {
		h.BadRequest(c, "log retention is disabled, pass older_than_days to purge")
		return
	}

	removed, err := h.logbook.Purge(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"removed": removed, "older_than_days": days})
}

// OrderHistory returns the sync summary of one order.
func (h *LogHandler) OrderHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.BadRequest(c, "invalid order id")
		return
	}
	row, err := h.history.Find(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderHistoryResponse(row))
}

// ListOrderHistory returns order sync summaries, optionally by status.
func (h *LogHandler) ListOrderHistory(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	q.Normalize()

	rows, total, err := h.history.List(c.Request.Context(),
		integration.SyncStatus(q.Status), q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]OrderHistoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toOrderHistoryResponse(&rows[i]))
	}
	h.SuccessWithMeta(c, out, total, q.Page, q.PageSize)
}

func toOrderHistoryResponse(row *integration.OrderSyncHistory) OrderHistoryResponse {
	return OrderHistoryResponse{
		OrderID:         row.OrderID,
		RemoteOrderID:   row.RemoteOrderID,
		RemoteInvoiceID: row.RemoteInvoiceID,
		Status:          row.Status.String(),
		SyncType:        row.SyncType,
		ErrorMessage:    row.ErrorMessage,
		LastSyncAt:      row.LastSyncAt,
	}
}
