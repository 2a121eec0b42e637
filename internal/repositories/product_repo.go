package repositories

import (
	"context"

	"gudang/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Owner-scoped lookups report ErrNotFound both when the product is absent and
// when it belongs to someone else.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindOwned(ctx context.Context, id, ownerID string) (*models.Product, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Update(ctx context.Context, product *models.Product) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
