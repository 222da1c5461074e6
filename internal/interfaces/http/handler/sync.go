package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appintegration "github.com/storebridge/backend/internal/application/integration"
	"github.com/storebridge/backend/internal/domain/integration"
)

// SyncResultResponse is the wire form of a single sync outcome.
type SyncResultResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	RemoteID int64  `json:"remote_id,omitempty"`
	Action   string `json:"action,omitempty"`
}

func toSyncResultResponse(r integration.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		Status:   r.Status.String(),
		Message:  r.Message,
		RemoteID: r.RemoteID,
		Action:   string(r.Action),
	}
}

// BatchResultResponse is the wire form of a bulk sync outcome.
type BatchResultResponse struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

func toBatchResultResponse(b integration.BatchResult) BatchResultResponse {
	return BatchResultResponse{
		Total:   b.Total,
		Synced:  b.Synced,
		Errors:  b.Errors,
		Skipped: b.Skipped,
	}
}

// BulkSyncRequest selects a page for a bulk sync run.
type BulkSyncRequest struct {
	Limit  int `json:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `json:"offset" binding:"omitempty,min=0"`
}

// BatchRequest asks for an explicit list of ids to be synced in chunks.
type BatchRequest struct {
	EntityType string  `json:"entity_type" binding:"required"`
	IDs        []int64 `json:"ids" binding:"required,min=1"`
	ChunkSize  int     `json:"chunk_size" binding:"omitempty,min=1,max=200"`
}

// SyncHandler exposes the push and reconcile operations.
type SyncHandler struct {
	BaseHandler
	customers *appintegration.CustomerSyncService
	orders    *appintegration.OrderSyncService
	products  *appintegration.ProductSyncService
	runner    *appintegration.BatchRunner
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(
	customers *appintegration.CustomerSyncService,
	orders *appintegration.OrderSyncService,
	products *appintegration.ProductSyncService,
	runner *appintegration.BatchRunner,
) *SyncHandler {
	return &SyncHandler{
		customers: customers,
		orders:    orders,
		products:  products,
		runner:    runner,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/customers/:id", h.SyncCustomer)
		sync.POST("/customers", h.SyncAllCustomers)
		sync.POST("/orders/:id", h.SyncOrder)
		sync.POST("/orders", h.SyncAllOrders)
		sync.POST("/products/:id", h.SyncProduct)
		sync.POST("/products", h.SyncAllProducts)
		sync.POST("/inventory/export/:id", h.ExportInventory)
		sync.POST("/inventory/export", h.ExportAllInventory)
		sync.POST("/inventory/import", h.ImportInventory)
		sync.POST("/batch", h.Batch)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SyncCustomer pushes one customer.
func (h *SyncHandler) SyncCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.BadRequest(c, "invalid customer id")
		return
	}
	res := h.customers.SyncCustomer(c.Request.Context(), integration.CustomerRef{ID: id})
	h.Success(c, toSyncResultResponse(res))
}

// SyncAllCustomers pushes a page of customers.
func (h *SyncHandler) SyncAllCustomers(c *gin.Context) {
	req := BulkSyncRequest{Limit: 100}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}
	batch, err := h.customers.SyncAll(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBatchResultResponse(batch))
}

// SyncOrder pushes one order.
func (h *SyncHandler) SyncOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.BadRequest(c, "invalid order id")
		return
	}
	res := h.orders.SyncOrder(c.Request.Context(), integration.OrderRef{ID: id})
	h.Success(c, toSyncResultResponse(res))
}

// SyncAllOrders pushes a page of syncable orders.
func (h *SyncHandler) SyncAllOrders(c *gin.Context) {
	req := BulkSyncRequest{Limit: 100}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}
	batch, err := h.orders.SyncAll(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBatchResultResponse(batch))
}

// SyncProduct pushes one product.
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	res := h.products.SyncProduct(c.Request.Context(), integration.ProductRef{ID: id})
	h.Success(c, toSyncResultResponse(res))
}

// SyncAllProducts pushes a page of products.
func (h *SyncHandler) SyncAllProducts(c *gin.Context) {
	req := BulkSyncRequest{Limit: 100}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}
	batch, err := h.products.SyncAll(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBatchResultResponse(batch))
}

// ExportInventory reconciles one product's stock and price towards the remote.
func (h *SyncHandler) ExportInventory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	res := h.products.ExportInventory(c.Request.Context(), id)
	h.Success(c, toSyncResultResponse(res))
}

// ExportAllInventory reconciles every mapped product towards the remote.
func (h *SyncHandler) ExportAllInventory(c *gin.Context) {
	batch, err := h.products.ExportAllInventory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBatchResultResponse(batch))
}

// ImportInventory pulls remote stock levels into the storefront.
func (h *SyncHandler) ImportInventory(c *gin.Context) {
	batch, err := h.products.ImportInventory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBatchResultResponse(batch))
}

// Batch syncs an explicit id list in chunks.
func (h *SyncHandler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	entityType := integration.SyncType(req.EntityType)
	if !entityType.IsValid() {
		h.BadRequest(c, "unknown entity type")
		return
	}

	report, err := h.runner.Process(c.Request.Context(), entityType, req.IDs, req.ChunkSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"total":     report.Total,
		"processed": report.Processed,
		"errors":    report.Errors,
		"stopped":   report.Stopped,
	})
}
