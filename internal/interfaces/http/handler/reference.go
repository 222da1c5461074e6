package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storebridge/backend/internal/infrastructure/cache"
)

// ReferenceHandler serves cached remote reference data.
type ReferenceHandler struct {
	BaseHandler
	cache *cache.ReferenceCache
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(refCache *cache.ReferenceCache) *ReferenceHandler {
	return &ReferenceHandler{cache: refCache}
}

// RegisterRoutes registers reference data routes
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ref := rg.Group("/reference")
	{
		ref.GET("/warehouses", h.Warehouses)
		ref.GET("/payment-methods", h.PaymentMethods)
		ref.GET("/bank-accounts", h.BankAccounts)
		ref.POST("/refresh", h.Refresh)
	}
}

// Warehouses lists the remote stock locations.
func (h *ReferenceHandler) Warehouses(c *gin.Context) {
	warehouses, err := h.cache.Warehouses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouses)
}

// PaymentMethods lists the remote payment types.
func (h *ReferenceHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.cache.PaymentMethods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// BankAccounts lists the remote bank accounts.
func (h *ReferenceHandler) BankAccounts(c *gin.Context) {
	accounts, err := h.cache.BankAccounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Refresh drops the cached reference data and repopulates it.
func (h *ReferenceHandler) Refresh(c *gin.Context) {
	if err := h.cache.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"refreshed": true})
}
