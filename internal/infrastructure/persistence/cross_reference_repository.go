package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/persistence/models"
)

// GormCrossReferenceRepository implements integration.CrossReferenceRepository using GORM.
type GormCrossReferenceRepository struct {
	db *gorm.DB
}

// NewGormCrossReferenceRepository creates a new GormCrossReferenceRepository.
func NewGormCrossReferenceRepository(db *gorm.DB) *GormCrossReferenceRepository {
	return &GormCrossReferenceRepository{db: db}
}

// Find returns the mapping for (entityType, localID).
func (r *GormCrossReferenceRepository) Find(ctx context.Context, entityType integration.SyncType, localID int64) (*integration.CrossReference, error) {
	var model models.CrossReferenceModel
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND wc_id = ?", entityType, localID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCrossReferenceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or replaces the mapping for the reference's entity.
func (r *GormCrossReferenceRepository) Save(ctx context.Context, ref *integration.CrossReference) error {
	model := &models.CrossReferenceModel{}
	model.FromDomain(ref)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entity_type"}, {Name: "wc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dolibarr_id", "last_sync_at", "status", "updated_at",
		}),
	}).Create(model).Error
}

// Delete removes the mapping for (entityType, localID).
func (r *GormCrossReferenceRepository) Delete(ctx context.Context, entityType integration.SyncType, localID int64) error {
	return r.db.WithContext(ctx).
		Where("entity_type = ? AND wc_id = ?", entityType, localID).
		Delete(&models.CrossReferenceModel{}).Error
}

// ListByType returns every mapping of one entity type.
func (r *GormCrossReferenceRepository) ListByType(ctx context.Context, entityType integration.SyncType) ([]integration.CrossReference, error) {
	var rows []models.CrossReferenceModel
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Order("wc_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	refs := make([]integration.CrossReference, 0, len(rows))
	for i := range rows {
		refs = append(refs, *rows[i].ToDomain())
	}
	return refs, nil
}

var _ integration.CrossReferenceRepository = (*GormCrossReferenceRepository)(nil)
