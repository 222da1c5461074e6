package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// CustomerSyncConfig tunes the customer orchestrator.
type CustomerSyncConfig struct {
	// Enabled gates all customer pushes
	Enabled bool
}

// CustomerSyncService pushes storefront customers to the remote ERP.
type CustomerSyncService struct {
	store    integration.LocalStore
	gateway  integration.ERPGateway
	refs     integration.CrossReferenceRepository
	logbook  integration.SyncLogRepository
	resolver *IdentityResolver
	mapper   *integration.Mapper
	cfg      CustomerSyncConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewCustomerSyncService creates a new CustomerSyncService.
func NewCustomerSyncService(
	store integration.LocalStore,
	gateway integration.ERPGateway,
	refs integration.CrossReferenceRepository,
	logbook integration.SyncLogRepository,
	resolver *IdentityResolver,
	mapper *integration.Mapper,
	cfg CustomerSyncConfig,
	log *zap.Logger,
) *CustomerSyncService {
	return &CustomerSyncService{
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

// SyncCustomer pushes one customer: update when a remote identity exists,
// create otherwise. Ineligible customers are skipped without touching the
// remote.
func (s *CustomerSyncService) SyncCustomer(ctx context.Context, ref integration.CustomerRef) integration.SyncResult {
	customer := ref.Entity
	if customer == nil {
		loaded, err := s.store.GetCustomer(ctx, ref.ID)
		if err != nil {
			return s.record(ctx, ref.ID, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("load customer %d: %v", ref.ID, err),
			})
		}
		customer = loaded
	}

	if !s.cfg.Enabled {
		return s.record(ctx, customer.ID, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "customer sync is disabled",
		})
	}
	if customer.Email == "" {
		return s.record(ctx, customer.ID, integration.SyncResult{
			Status:  integration.SyncStatusSkipped,
			Message: "customer has no email address",
		})
	}

	remoteID, err := s.resolver.ResolveCustomer(ctx, customer.ID, customer.Email)
	if err != nil {
		return s.record(ctx, customer.ID, integration.SyncResult{
			Status:  integration.SyncStatusError,
			Message: fmt.Sprintf("resolve customer identity: %v", err),
		})
	}

	payload := s.mapper.ThirdParty(customer)
	result := integration.SyncResult{Status: integration.SyncStatusSuccess}

	if remoteID > 0 {
		if err := s.gateway.UpdateThirdParty(ctx, remoteID, payload); err != nil {
			return s.record(ctx, customer.ID, integration.SyncResult{
				Status:   integration.SyncStatusError,
				Message:  fmt.Sprintf("update remote customer: %v", err),
				RemoteID: remoteID,
			})
		}
		result.RemoteID = remoteID
		result.Action = integration.ActionUpdated
		result.Message = fmt.Sprintf("customer updated as third party %d", remoteID)
	} else {
		created, err := s.gateway.CreateThirdParty(ctx, payload)
		if err != nil {
			return s.record(ctx, customer.ID, integration.SyncResult{
				Status:  integration.SyncStatusError,
				Message: fmt.Sprintf("create remote customer: %v", err),
			})
		}
		result.RemoteID = created
		result.Action = integration.ActionCreated
		result.Message = fmt.Sprintf("customer created as third party %d", created)
	}

	if err := s.refs.Save(ctx, &integration.CrossReference{
		EntityType: integration.SyncTypeCustomer,
		LocalID:    customer.ID,
		RemoteID:   result.RemoteID,
		LastSyncAt: s.now(),
		Status:     integration.SyncStatusSuccess,
	}); err != nil {
		return s.record(ctx, customer.ID, integration.SyncResult{
			Status:   integration.SyncStatusError,
			Message:  fmt.Sprintf("save cross-reference: %v", err),
			RemoteID: result.RemoteID,
			Action:   result.Action,
		})
	}

	s.log.Info("Customer synced",
		zap.Int64("customer_id", customer.ID),
		zap.Int64("remote_id", result.RemoteID),
		zap.String("action", string(result.Action)),
	)
	return s.record(ctx, customer.ID, result)
}

// SyncAll pushes a page of customers, tolerating per-customer failures.
// The page is aborted upfront only when the remote is unusable.
func (s *CustomerSyncService) SyncAll(ctx context.Context, limit, offset int) (integration.BatchResult, error) {
	var batch integration.BatchResult

	if err := s.probeRemote(ctx); err != nil {
		return batch, err
	}

	customers, err := s.store.ListCustomers(ctx, limit, offset)
	if err != nil {
		return batch, fmt.Errorf("list customers: %w", err)
	}

	for i := range customers {
		c := customers[i]
		batch.Add(c.ID, s.SyncCustomer(ctx, integration.CustomerRef{ID: c.ID, Entity: &c}))
	}

	s.log.Info("Customer batch finished",
		zap.Int("total", batch.Total),
		zap.Int("synced", batch.Synced),
		zap.Int("errors", batch.Errors),
		zap.Int("skipped", batch.Skipped),
	)
	return batch, nil
}

// probeRemote aborts bulk runs early when the connection is misconfigured
// or the remote is down.
func (s *CustomerSyncService) probeRemote(ctx context.Context) error {
	_, err := s.gateway.Status(ctx)
	if errors.Is(err, integration.ErrNotConfigured) || errors.Is(err, integration.ErrRemoteUnavailable) {
		return err
	}
	return nil
}

// record writes the outcome to the audit trail and returns it unchanged.
func (s *CustomerSyncService) record(ctx context.Context, localID int64, result integration.SyncResult) integration.SyncResult {
	entry := &integration.SyncLogEntry{
		SyncType:  integration.SyncTypeCustomer,
		LocalID:   localID,
		RemoteID:  result.RemoteID,
		Status:    result.Status,
		Message:   result.Message,
		Direction: integration.DirectionPush,
	}
	if err := s.logbook.Append(ctx, entry); err != nil {
		s.log.Warn("Failed to append sync log entry", zap.Int64("customer_id", localID), zap.Error(err))
	}
	if result.Status == integration.SyncStatusError {
		s.log.Warn("Customer sync failed", zap.Int64("customer_id", localID), zap.String("message", result.Message))
	}
	return result
}
