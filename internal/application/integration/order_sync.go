package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// RunKind labels what triggered a sync run in the per-order history.
type RunKind string

const (
	RunKindManual    RunKind = "manual"
	RunKindAutomatic RunKind = "automatic"
)

// OrderSyncConfig tunes the order orchestrator.
type OrderSyncConfig struct {
	// Enabled gates all order pushes
	Enabled bool
	// ExcludedStatuses adds to the built-in set of never-synced statuses
	ExcludedStatuses []string
}

func (c OrderSyncConfig) excluded(status integration.OrderStatus) bool {
	if status.Excluded() {
		return true
	}
	for _, s := range c.ExcludedStatuses {
		if s == status.String() {
			return true
		}
	}
	return false
}

// OrderSyncService pushes storefront orders to the remote ERP. Pushing an
// order first pushes its customer and line products so the remote order can
// reference them.
type OrderSyncService struct {
	store     integration.LocalStore
	gateway   integration.ERPGateway
	refs      integration.CrossReferenceRepository
	logbook   integration.SyncLogRepository
	history   integration.OrderSyncHistoryRepository
	customers *CustomerSyncService
	products  *ProductSyncService
	resolver  *IdentityResolver
	mapper    *integration.Mapper
	cfg       OrderSyncConfig
	log       *zap.Logger
	now       func() time.Time
}

// NewOrderSyncService creates a new OrderSyncService.
func NewOrderSyncService(
	store integration.LocalStore,
	gateway integration.ERPGateway,
	refs integration.CrossReferenceRepository,
	logbook integration.SyncLogRepository,
	history integration.OrderSyncHistoryRepository,
	customers *CustomerSyncService,
	products *ProductSyncService,
	resolver *IdentityResolver,
	mapper *integration.Mapper,
	cfg OrderSyncConfig,
	log *zap.Logger,
) *OrderSyncService {
	return &OrderSyncService{
		store:     store,
		gateway:   gateway,
		refs:      refs,
		logbook:   logbook,
		history:   history,
		customers: customers,
		products:  products,
		resolver:  resolver,
		mapper:    mapper,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// SyncOrder pushes a single order on an explicit request.
func (s *OrderSyncService) SyncOrder(ctx context.Context, ref integration.OrderRef) integration.SyncResult {
	return s.syncOrder(ctx, ref, RunKindManual)
}

func (s *OrderSyncService) syncOrder(ctx context.Context, ref integration.OrderRef, kind RunKind) integration.SyncResult {
	order := ref.Entity
	if order == nil {
		loaded, err := s.store.GetOrder(ctx, ref.ID)
		if err != nil {
			return s.record(ctx, ref.ID, kind, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("load order %d: %v", ref.ID, err),
			})
		}
		order = loaded
	}

	if !s.cfg.Enabled {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "order sync is disabled",
		})
	}
	if s.cfg.excluded(order.Status) {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: fmt.Sprintf("orders in status %q are not synced", order.Status),
		})
	}

	existing, err := s.refs.Find(ctx, integration.SyncTypeOrder, order.ID)
	if err != nil && !errors.Is(err, integration.ErrCrossReferenceNotFound) {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: fmt.Sprintf("look up order cross-reference: %v", err),
		})
	}
	if existing != nil && !order.UpdatedAt.After(existing.LastSyncAt) {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:   integration.SyncStatusSkipped,
			Message:  "order unchanged since last sync",
			RemoteID: existing.RemoteID,
		})
	}

	s.markPending(ctx, order.ID)

	socID, err := s.resolveBuyer(ctx, order)
	if err != nil {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: err.Error(),
		})
	}

	if err := s.syncLineProducts(ctx, order); err != nil {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: err.Error(),
		})
	}

	payload := s.mapper.RemoteOrder(order, socID)
	result := integration.SyncResult{Status: integration.SyncStatusSuccess}

	if existing != nil && existing.RemoteID > 0 {
		if err := s.gateway.UpdateOrder(ctx, existing.RemoteID, payload); err != nil {
			return s.record(ctx, order.ID, kind, integration.SyncResult{
				Status:   integration.SyncStatusError,
				Message:  fmt.Sprintf("update remote order: %v", err),
				RemoteID: existing.RemoteID,
			})
		}
		result.RemoteID = existing.RemoteID
		result.Action = integration.ActionUpdated
		result.Message = fmt.Sprintf("order updated as remote order %d", existing.RemoteID)
	} else {
		created, err := s.gateway.CreateOrder(ctx, payload)
		if err != nil {
			return s.record(ctx, order.ID, kind, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("create remote order: %v", err),
			})
		}
		result.RemoteID = created
		result.Action = integration.ActionCreated
		result.Message = fmt.Sprintf("order created as remote order %d", created)
	}

	if err := s.refs.Save(ctx, &integration.CrossReference{
		EntityType: integration.SyncTypeOrder,
		LocalID:    order.ID,
		RemoteID:   result.RemoteID,
		LastSyncAt: s.now(),
		Status:     integration.SyncStatusSuccess,
	}); err != nil {
		return s.record(ctx, order.ID, kind, integration.SyncResult{
			Status:   integration.SyncStatusError,
			Message:  fmt.Sprintf("save cross-reference: %v", err),
			RemoteID: result.RemoteID,
			Action:   result.Action,
		})
	}

	s.log.Info("Order synced",
		zap.Int64("order_id", order.ID),
		zap.Int64("remote_id", result.RemoteID),
		zap.String("action", string(result.Action)),
	)
	return s.record(ctx, order.ID, kind, result)
}

// resolveBuyer returns the remote third-party id the order belongs to,
// creating a guest third party when nothing matches.
func (s *OrderSyncService) resolveBuyer(ctx context.Context, order *integration.Order) (int64, error) {
	if order.CustomerID > 0 {
		res := s.customers.SyncCustomer(ctx, integration.CustomerRef{ID: order.CustomerID})
		if res.Succeeded() {
			return res.RemoteID, nil
		}
		if !res.Skipped() {
			return 0, fmt.Errorf("customer sync failed: %s", res.Message)
		}
		// ineligible account, fall back to the checkout email
	}

	remoteID, err := s.resolver.ResolveCustomerByEmail(ctx, order.BillingEmail)
	if err != nil {
		return 0, fmt.Errorf("resolve buyer by email: %w", err)
	}
	if remoteID > 0 {
		return remoteID, nil
	}

	created, err := s.gateway.CreateThirdParty(ctx, s.mapper.GuestThirdParty(order))
	if err != nil {
		return 0, fmt.Errorf("create guest third party: %w", err)
	}
	s.log.Info("Guest third party created",
		zap.Int64("order_id", order.ID),
		zap.Int64("remote_id", created),
	)
	return created, nil
}

// syncLineProducts pushes every known line product so the remote order can
// reference them by SKU. A failed product aborts the order push.
func (s *OrderSyncService) syncLineProducts(ctx context.Context, order *integration.Order) error {
	for i := range order.Items {
		item := &order.Items[i]
		if item.ProductID == 0 {
			continue
		}
		res := s.products.SyncProduct(ctx, integration.ProductRef{ID: item.ProductID})
		if res.Status == integration.SyncStatusError {
			return fmt.Errorf("product sync failed for product %d: %s", item.ProductID, res.Message)
		}
	}
	return nil
}

// SyncAll pushes a page of syncable orders, newest first.
func (s *OrderSyncService) SyncAll(ctx context.Context, limit, offset int) (integration.BatchResult, error) {
	var batch integration.BatchResult

	if _, err := s.gateway.Status(ctx); err != nil {
		if errors.Is(err, integration.ErrNotConfigured) || errors.Is(err, integration.ErrRemoteUnavailable) {
			return batch, err
		}
	}

	orders, err := s.store.ListOrders(ctx, integration.SyncableOrderStatuses(), limit, offset)
	if err != nil {
		return batch, fmt.Errorf("list orders: %w", err)
	}

	for i := range orders {
		o := orders[i]
		batch.Add(o.ID, s.syncOrder(ctx, integration.OrderRef{ID: o.ID, Entity: &o}, RunKindAutomatic))
	}

	s.log.Info("Order batch finished",
		zap.Int("total", batch.Total),
		zap.Int("synced", batch.Synced),
		zap.Int("errors", batch.Errors),
		zap.Int("skipped", batch.Skipped),
	)
	return batch, nil
}

// markPending opens the ledger entry for a push that is about to touch the
// remote. record finalizes it in place once the outcome is known.
func (s *OrderSyncService) markPending(ctx context.Context, orderID int64) {
	entry := &integration.SyncLogEntry{
		SyncType:  integration.SyncTypeOrder,
		LocalID:   orderID,
		Status:    integration.SyncStatusPending,
		Message:   "order push started",
		Direction: integration.DirectionPush,
	}
	if err := s.logbook.Append(ctx, entry); err != nil {
		s.log.Warn("Failed to open sync log entry", zap.Int64("order_id", orderID), zap.Error(err))
	}
}

// record writes the outcome to the audit trail and the per-order history.
// A pending entry opened by markPending is flipped in place; outcomes
// reached before that point append a fresh entry.
func (s *OrderSyncService) record(ctx context.Context, orderID int64, kind RunKind, result integration.SyncResult) integration.SyncResult {
	updated, err := s.logbook.Update(ctx, integration.SyncTypeOrder, orderID, integration.SyncLogPatch{
		RemoteID: result.RemoteID,
		Status:   result.Status,
		Message:  result.Message,
	})
	if err != nil {
		s.log.Warn("Failed to update sync log entry", zap.Int64("order_id", orderID), zap.Error(err))
	}
	if updated == 0 {
		entry := &integration.SyncLogEntry{
			SyncType:  integration.SyncTypeOrder,
			LocalID:   orderID,
			RemoteID:  result.RemoteID,
			Status:    result.Status,
			Message:   result.Message,
			Direction: integration.DirectionPush,
		}
		if err := s.logbook.Append(ctx, entry); err != nil {
			s.log.Warn("Failed to append sync log entry", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	h := &integration.OrderSyncHistory{
		OrderID:       orderID,
		RemoteOrderID: result.RemoteID,
		Status:        result.Status,
		SyncType:      string(kind),
		LastSyncAt:    s.now(),
	}
	if result.Status == integration.SyncStatusError {
		h.ErrorMessage = result.Message
	}
	if result.Status != integration.SyncStatusSkipped {
		if err := s.history.Upsert(ctx, h); err != nil {
			s.log.Warn("Failed to record order sync history", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	if result.Status == integration.SyncStatusError {
		s.log.Warn("Order sync failed", zap.Int64("order_id", orderID), zap.String("message", result.Message))
	}
	return result
}
