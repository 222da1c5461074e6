package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// ProductSyncConfig tunes the product and inventory orchestrator.
type ProductSyncConfig struct {
	// Enabled gates product pushes
	Enabled bool
	// InventoryEnabled gates stock export and import
	InventoryEnabled bool
	// DefaultWarehouseID receives exported stock corrections
	DefaultWarehouseID int64
}

// ProductSyncService pushes storefront products to the remote ERP and
// reconciles stock levels in both directions.
type ProductSyncService struct {
	store    integration.LocalStore
	gateway  integration.ERPGateway
	refs     integration.CrossReferenceRepository
	logbook  integration.SyncLogRepository
	resolver *IdentityResolver
	mapper   *integration.Mapper
	cfg      ProductSyncConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewProductSyncService creates a new ProductSyncService.
func NewProductSyncService(
	store integration.LocalStore,
	gateway integration.ERPGateway,
	refs integration.CrossReferenceRepository,
	logbook integration.SyncLogRepository,
	resolver *IdentityResolver,
	mapper *integration.Mapper,
	cfg ProductSyncConfig,
	log *zap.Logger,
) *ProductSyncService {
	return &ProductSyncService{
		store:    store,
		gateway:  gateway,
		refs:     refs,
		logbook:  logbook,
		resolver: resolver,
		mapper:   mapper,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// SyncProduct pushes one product: update when a remote counterpart exists,
// create otherwise.
func (s *ProductSyncService) SyncProduct(ctx context.Context, ref integration.ProductRef) integration.SyncResult {
	product := ref.Entity
	if product == nil {
		loaded, err := s.store.GetProduct(ctx, ref.ID)
		if err != nil {
			return s.record(ctx, integration.SyncTypeProduct, ref.ID, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("load product %d: %v", ref.ID, err),
			})
		}
		product = loaded
	}

	if !s.cfg.Enabled {
		return s.record(ctx, integration.SyncTypeProduct, product.ID, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "product sync is disabled",
		})
	}

	remoteID, err := s.resolver.Resolve(ctx, integration.SyncTypeProduct, product.ID)
	if err != nil {
		return s.record(ctx, integration.SyncTypeProduct, product.ID, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: fmt.Sprintf("resolve product identity: %v", err),
		})
	}

	payload := s.mapper.RemoteProductPayload(product)
	result := integration.SyncResult{Status: integration.SyncStatusSuccess}

	if remoteID > 0 {
		if err := s.gateway.UpdateProduct(ctx, remoteID, payload); err != nil {
			return s.record(ctx, integration.SyncTypeProduct, product.ID, integration.SyncResult{
				Status:   integration.SyncStatusError,
				Message:  fmt.Sprintf("update remote product: %v", err),
				RemoteID: remoteID,
			})
		}
		result.RemoteID = remoteID
		result.Action = integration.ActionUpdated
		result.Message = fmt.Sprintf("product updated as remote product %d", remoteID)
	} else {
		created, err := s.gateway.CreateProduct(ctx, payload)
		if err != nil {
			return s.record(ctx, integration.SyncTypeProduct, product.ID, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("create remote product: %v", err),
			})
		}
		result.RemoteID = created
		result.Action = integration.ActionCreated
		result.Message = fmt.Sprintf("product created as remote product %d", created)
	}

	if err := s.refs.Save(ctx, &integration.CrossReference{
		EntityType: integration.SyncTypeProduct,
		LocalID:    product.ID,
		RemoteID:   result.RemoteID,
		LastSyncAt: s.now(),
		Status:     integration.SyncStatusSuccess,
	}); err != nil {
		return s.record(ctx, integration.SyncTypeProduct, product.ID, integration.SyncResult{
			Status:   integration.SyncStatusError,
			Message:  fmt.Sprintf("save cross-reference: %v", err),
			RemoteID: result.RemoteID,
			Action:   result.Action,
		})
	}

	return s.record(ctx, integration.SyncTypeProduct, product.ID, result)
}

// SyncAll pushes a page of products, tolerating per-product failures.
func (s *ProductSyncService) SyncAll(ctx context.Context, limit, offset int) (integration.BatchResult, error) {
	var batch integration.BatchResult

	if _, err := s.gateway.Status(ctx); err != nil {
		if errors.Is(err, integration.ErrNotConfigured) || errors.Is(err, integration.ErrRemoteUnavailable) {
			return batch, err
		}
	}

	products, err := s.store.ListProducts(ctx, limit, offset)
	if err != nil {
		return batch, fmt.Errorf("list products: %w", err)
	}

	for i := range products {
		p := products[i]
		batch.Add(p.ID, s.SyncProduct(ctx, integration.ProductRef{ID: p.ID, Entity: &p}))
	}

	s.log.Info("Product batch finished",
		zap.Int("total", batch.Total),
		zap.Int("synced", batch.Synced),
		zap.Int("errors", batch.Errors),
		zap.Int("skipped", batch.Skipped),
	)
	return batch, nil
}

// ExportInventory reconciles one product's stock and price towards the
// remote. Stock drift becomes a signed stock movement against the default
// warehouse; a price mismatch becomes a price update. The two corrections
// are independent.
func (s *ProductSyncService) ExportInventory(ctx context.Context, productID int64) integration.SyncResult {
	if !s.cfg.InventoryEnabled {
		return s.record(ctx, integration.SyncTypeInventory, productID, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "inventory sync is disabled",
		})
	}

	remoteID, err := s.resolver.Resolve(ctx, integration.SyncTypeProduct, productID)
	if err != nil {
		return s.record(ctx, integration.SyncTypeInventory, productID, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: fmt.Sprintf("resolve product identity: %v", err),
		})
	}
	if remoteID == 0 {
		return s.record(ctx, integration.SyncTypeInventory, productID, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "product has never been synced",
		})
	}

	local, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return s.record(ctx, integration.SyncTypeInventory, productID, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: fmt.Sprintf("load product %d: %v", productID, err),
		})
	}
	remote, err := s.gateway.GetProduct(ctx, remoteID)
	if err != nil {
		return s.record(ctx, integration.SyncTypeInventory, productID, integration.SyncResult{
			Status:   integration.SyncStatusError,
			Message:  fmt.Sprintf("load remote product %d: %v", remoteID, err),
			RemoteID: remoteID,
		})
	}

	var messages []string
	var failures []string

	diff := local.StockQuantity - remote.Stock().IntPart()
	if diff != 0 {
		movement := integration.StockMovementPayload{
			ProductID:   remoteID,
			WarehouseID: s.cfg.DefaultWarehouseID,
			Quantity:    decimal.NewFromInt(diff),
			Label:       fmt.Sprintf("Stock correction from storefront product #%d", productID),
		}
		if diff > 0 {
			movement.Type = "input"
		} else {
			movement.Type = "output"
		}
		if err := s.gateway.CreateStockMovement(ctx, movement); err != nil {
			failures = append(failures, fmt.Sprintf("stock movement: %v", err))
		} else {
			messages = append(messages, fmt.Sprintf("stock corrected by %+d", diff))
		}
	}

	if !local.Price.Round(2).Equal(remote.Price.Round(2)) {
		if err := s.gateway.UpdateProductPrice(ctx, remoteID, local.Price.Round(2)); err != nil {
			failures = append(failures, fmt.Sprintf("price update: %v", err))
		} else {
			messages = append(messages, fmt.Sprintf("price updated to %s", local.Price.Round(2)))
		}
	}

	result := integration.SyncResult{
		Status:   integration.SyncStatusSuccess,
		RemoteID: remoteID,
		Action:   integration.ActionUpdated,
	}
	switch {
	case len(failures) > 0:
		result.Status = integration.SyncStatusError
		result.Message = strings.Join(append(messages, failures...), "; ")
	case len(messages) > 0:
		result.Message = strings.Join(messages, "; ")
	default:
		result.Message = "stock and price already in sync"
	}
	return s.record(ctx, integration.SyncTypeInventory, productID, result)
}

// ExportAllInventory reconciles every product that has a remote counterpart.
func (s *ProductSyncService) ExportAllInventory(ctx context.Context) (integration.BatchResult, error) {
	var batch integration.BatchResult

	refs, err := s.refs.ListByType(ctx, integration.SyncTypeProduct)
	if err != nil {
		return batch, fmt.Errorf("list product cross-references: %w", err)
	}
	for _, ref := range refs {
		batch.Add(ref.LocalID, s.ExportInventory(ctx, ref.LocalID))
	}

	s.log.Info("Inventory export finished",
		zap.Int("total", batch.Total),
		zap.Int("synced", batch.Synced),
		zap.Int("errors", batch.Errors),
		zap.Int("skipped", batch.Skipped),
	)
	return batch, nil
}

// ImportInventory pulls remote stock levels into the storefront for every
// product with a cross-reference.
func (s *ProductSyncService) ImportInventory(ctx context.Context) (integration.BatchResult, error) {
	var batch integration.BatchResult

	if !s.cfg.InventoryEnabled {
		return batch, nil
	}

	refs, err := s.refs.ListByType(ctx, integration.SyncTypeProduct)
	if err != nil {
		return batch, fmt.Errorf("list product cross-references: %w", err)
	}
	byRemote := make(map[int64]int64, len(refs))
	for _, ref := range refs {
		byRemote[ref.RemoteID] = ref.LocalID
	}

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return batch, fmt.Errorf("list remote products: %w", err)
	}

	for i := range products {
		remote := &products[i]
		localID, ok := byRemote[remote.ID]
		if !ok {
			continue
		}
		if remote.StockReal == nil {
			// no stock data reported, leave the local level alone
			continue
		}
		result := integration.SyncResult{
			Status:   integration.SyncStatusSuccess,
			RemoteID: remote.ID,
			Action:   integration.ActionUpdated,
			Message:  fmt.Sprintf("stock set to %d", remote.Stock().IntPart()),
		}
		if err := s.store.SetProductStock(ctx, localID, remote.Stock().IntPart()); err != nil {
			result.Status = integration.SyncStatusError
			result.Message = fmt.Sprintf("set local stock: %v", err)
		}
		entry := &integration.SyncLogEntry{
			SyncType:  integration.SyncTypeInventory,
			LocalID:   localID,
			RemoteID:  remote.ID,
			Status:    result.Status,
			Message:   result.Message,
			Direction: integration.DirectionPull,
		}
		if err := s.logbook.Append(ctx, entry); err != nil {
			s.log.Warn("Failed to append sync log entry", zap.Int64("product_id", localID), zap.Error(err))
		}
		batch.Add(localID, result)
	}

	s.log.Info("Inventory import finished",
		zap.Int("total", batch.Total),
		zap.Int("synced", batch.Synced),
		zap.Int("errors", batch.Errors),
	)
	return batch, nil
}

// record writes the outcome to the audit trail and returns it unchanged.
func (s *ProductSyncService) record(ctx context.Context, syncType integration.SyncType, localID int64, result integration.SyncResult) integration.SyncResult {
	entry := &integration.SyncLogEntry{
		SyncType:  syncType,
		LocalID:   localID,
		RemoteID:  result.RemoteID,
		Status:    result.Status,
		Message:   result.Message,
		Direction: integration.DirectionPush,
	}
	if err := s.logbook.Append(ctx, entry); err != nil {
		s.log.Warn("Failed to append sync log entry", zap.Int64("local_id", localID), zap.Error(err))
	}
	if result.Status == integration.SyncStatusError {
		s.log.Warn("Product sync failed",
			zap.String("sync_type", syncType.String()),
			zap.Int64("local_id", localID),
			zap.String("message", result.Message),
		)
	}
	return result
}
