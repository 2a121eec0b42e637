package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"gudang/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It enforces the same sku uniqueness as the database index.
type MemoryProductRepository struct {
	products map[string]models.Product
	skus     map[string]string // sku -> product ID
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		skus:     make(map[string]string),
	}
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.skus[product.SKU]; taken {
		return ErrDuplicateSKU
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	r.products[product.ID] = *product
	r.skus[product.SKU] = product.ID
	return nil
}

// FindByID returns a product by its ID regardless of owner.
func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// FindOwned returns a product by its ID if it belongs to ownerID.
func (r *MemoryProductRepository) FindOwned(_ context.Context, id, ownerID string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok || product.CreatedBy != ownerID {
		return nil, ErrNotFound
	}
	return &product, nil
}

// FindAllByOwner returns the owner's products ordered by creation time, then ID.
func (r *MemoryProductRepository) FindAllByOwner(_ context.Context, ownerID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0)
	for _, p := range r.products {
		if p.CreatedBy == ownerID {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		if !productList[i].CreatedAt.Equal(productList[j].CreatedAt) {
			return productList[i].CreatedAt.Before(productList[j].CreatedAt)
		}
		return productList[i].ID < productList[j].ID
	})
	return productList, nil
}

// ExistsBySKU reports whether a product with sku is stored.
func (r *MemoryProductRepository) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.skus[sku]
	return ok, nil
}

// Update modifies the mutable fields of an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok || existing.CreatedBy != product.CreatedBy {
		return ErrNotFound
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Quantity = product.Quantity
	existing.Category = product.Category
	existing.UpdatedAt = time.Now()
	r.products[product.ID] = existing
	product.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteOwned removes a product if it belongs to ownerID.
func (r *MemoryProductRepository) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.CreatedBy != ownerID {
		return ErrNotFound
	}
	delete(r.products, id)
	delete(r.skus, product.SKU)
	return nil
}
