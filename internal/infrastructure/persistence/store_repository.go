package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/persistence/models"
)

// GormStoreRepository implements integration.LocalStore against storefront
// tables living in the sync database. Deployments where the storefront keeps
// its own database swap this for a remote adapter.
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository.
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// GetCustomer returns one storefront customer.
func (r *GormStoreRepository) GetCustomer(ctx context.Context, id int64) (*integration.Customer, error) {
	var model models.StoreCustomerModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLocalNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListCustomers returns customers ordered by id.
func (r *GormStoreRepository) ListCustomers(ctx context.Context, limit, offset int) ([]integration.Customer, error) {
	var rows []models.StoreCustomerModel
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	customers := make([]integration.Customer, 0, len(rows))
	for i := range rows {
		customers = append(customers, *rows[i].ToDomain())
	}
	return customers, nil
}

// GetOrder returns one storefront order.
func (r *GormStoreRepository) GetOrder(ctx context.Context, id int64) (*integration.Order, error) {
	var model models.StoreOrderModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLocalNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListOrders returns orders in the given statuses, newest first.
func (r *GormStoreRepository) ListOrders(ctx context.Context, statuses []integration.OrderStatus, limit, offset int) ([]integration.Order, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var rows []models.StoreOrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]integration.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// GetProduct returns one storefront product.
func (r *GormStoreRepository) GetProduct(ctx context.Context, id int64) (*integration.Product, error) {
	var model models.StoreProductModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLocalNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindProductBySKU returns the product carrying the given SKU.
func (r *GormStoreRepository) FindProductBySKU(ctx context.Context, sku string) (*integration.Product, error) {
	if sku == "" {
		return nil, integration.ErrLocalNotFound
	}
	var model models.StoreProductModel
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLocalNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListProducts returns products ordered by id.
func (r *GormStoreRepository) ListProducts(ctx context.Context, limit, offset int) ([]integration.Product, error) {
	var rows []models.StoreProductModel
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]integration.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// SetProductStock overwrites the tracked stock level of a product.
func (r *GormStoreRepository) SetProductStock(ctx context.Context, id int64, quantity int64) error {
	result := r.db.WithContext(ctx).Model(&models.StoreProductModel{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrLocalNotFound
	}
	return nil
}

var _ integration.LocalStore = (*GormStoreRepository)(nil)
