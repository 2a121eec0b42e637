package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gudang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique index
// violations surface as gorm.ErrDuplicatedKey.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts a new product, assigning its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		product.ID = ""
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID retrieves a single product by its ID regardless of owner.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// FindOwned retrieves a product by ID only if it belongs to ownerID.
func (r *GORMProductRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s for owner %s: %w", id, ownerID, err)
	}
	return &product, nil
}

// FindAllByOwner lists the owner's products, oldest first.
func (r *GORMProductRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products for owner %s: %w", ownerID, err)
	}
	return products, nil
}

// ExistsBySKU reports whether any product already carries sku.
func (r *GORMProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sku %s: %w", sku, err)
	}
	return count > 0, nil
}

// Update writes the mutable fields of an existing product. The owner filter
// keeps a stale or foreign product value from overwriting someone else's row.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND created_by = ?", product.ID, product.CreatedBy).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"quantity":    product.Quantity,
			"category":    product.Category,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	product.UpdatedAt = now
	return nil
}

// DeleteOwned removes the product permanently if it belongs to ownerID.
func (r *GORMProductRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ? AND created_by = ?", id, ownerID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
