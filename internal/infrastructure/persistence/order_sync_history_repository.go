package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/persistence/models"
)

// GormOrderSyncHistoryRepository implements integration.OrderSyncHistoryRepository using GORM.
type GormOrderSyncHistoryRepository struct {
	db *gorm.DB
}

// NewGormOrderSyncHistoryRepository creates a new GormOrderSyncHistoryRepository.
func NewGormOrderSyncHistoryRepository(db *gorm.DB) *GormOrderSyncHistoryRepository {
	return &GormOrderSyncHistoryRepository{db: db}
}

// Upsert replaces the existing row for the order, keeping one row per order.
func (r *GormOrderSyncHistoryRepository) Upsert(ctx context.Context, h *integration.OrderSyncHistory) error {
	model := &models.OrderSyncHistoryModel{}
	model.FromDomain(h)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dolibarr_order_id", "dolibarr_invoice_id", "sync_status",
			"sync_type", "error_message", "last_sync_at", "updated_at",
		}),
	}).Create(model).Error
}

// Find returns the history row for one order.
func (r *GormOrderSyncHistoryRepository) Find(ctx context.Context, orderID int64) (*integration.OrderSyncHistory, error) {
	var model models.OrderSyncHistoryModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrHistoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns history rows, optionally filtered by status, newest first.
func (r *GormOrderSyncHistoryRepository) List(ctx context.Context, status integration.SyncStatus, limit, offset int) ([]integration.OrderSyncHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderSyncHistoryModel{})
	if status != "" {
		query = query.Where("sync_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("last_sync_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var rows []models.OrderSyncHistoryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	histories := make([]integration.OrderSyncHistory, 0, len(rows))
	for i := range rows {
		histories = append(histories, *rows[i].ToDomain())
	}
	return histories, total, nil
}

var _ integration.OrderSyncHistoryRepository = (*GormOrderSyncHistoryRepository)(nil)
