package integration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// EventKind names a storefront change that should trigger a sync.
type EventKind string

const (
	EventCustomerSaved       EventKind = "customer.saved"
	EventUserRegistered      EventKind = "user.registered"
	EventOrderCreated        EventKind = "order.created"
	EventOrderStatusChanged  EventKind = "order.status_changed"
	EventProductStockChanged EventKind = "product.stock_changed"
)

// Event is a storefront change notification.
type Event struct {
	// Kind is what happened
	Kind EventKind
	// EntityID is the affected storefront entity
	EntityID int64
}

// TriggerHandler maps storefront events to sync operations. The event set
// is closed; unknown kinds are an error so misrouted webhooks surface.
type TriggerHandler struct {
	customers *CustomerSyncService
	orders    *OrderSyncService
	products  *ProductSyncService
	log       *zap.Logger
}

// NewTriggerHandler creates a TriggerHandler over the three orchestrators.
func NewTriggerHandler(
	customers *CustomerSyncService,
	orders *OrderSyncService,
	products *ProductSyncService,
	log *zap.Logger,
) *TriggerHandler {
	return &TriggerHandler{
		customers: customers,
		orders:    orders,
		products:  products,
		log:       log,
	}
}

// Handle dispatches one event to the matching orchestrator.
func (h *TriggerHandler) Handle(ctx context.Context, ev Event) (integration.SyncResult, error) {
	var result integration.SyncResult

	switch ev.Kind {
	case EventCustomerSaved, EventUserRegistered:
		result = h.customers.SyncCustomer(ctx, integration.CustomerRef{ID: ev.EntityID})
	case EventOrderCreated, EventOrderStatusChanged:
		result = h.orders.syncOrder(ctx, integration.OrderRef{ID: ev.EntityID}, RunKindAutomatic)
	case EventProductStockChanged:
		result = h.products.ExportInventory(ctx, ev.EntityID)
	default:
		return result, fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	h.log.Debug("Event handled",
		zap.String("kind", string(ev.Kind)),
		zap.Int64("entity_id", ev.EntityID),
		zap.String("status", result.Status.String()),
	)
	return result, nil
}
