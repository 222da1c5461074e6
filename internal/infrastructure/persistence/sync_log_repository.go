package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements integration.SyncLogRepository using GORM.
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository.
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append writes one audit trail entry and backfills its assigned id.
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *integration.SyncLogEntry) error {
	model := &models.SyncLogModel{}
	model.FromDomain(entry)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	entry.UpdatedAt = model.UpdatedAt
	return nil
}

// Update flips the pending entries for (syncType, localID) in place.
func (r *GormSyncLogRepository) Update(ctx context.Context, syncType integration.SyncType, localID int64, patch integration.SyncLogPatch) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Where("sync_type = ? AND wc_id = ? AND status = ?", syncType, localID, integration.SyncStatusPending).
		Updates(map[string]any{
			"dolibarr_id": patch.RemoteID,
			"status":      patch.Status,
			"message":     patch.Message,
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Query returns matching entries newest first, plus the total match count.
func (r *GormSyncLogRepository) Query(ctx context.Context, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncLogModel{})

	if filter.SyncType != "" {
		query = query.Where("sync_type = ?", filter.SyncType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LocalID > 0 {
		query = query.Where("wc_id = ?", filter.LocalID)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.SyncLogModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]integration.SyncLogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, *rows[i].ToDomain())
	}
	return entries, total, nil
}

// Purge deletes entries older than the given number of days.
func (r *GormSyncLogRepository) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.SyncLogModel{})
	return result.RowsAffected, result.Error
}

var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)
