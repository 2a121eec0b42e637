package services

import (
	"context"
	"errors"
	"strings"

	"gudang/internal/models"
	"gudang/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EventPublisher delivers product lifecycle events to other systems.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// CreateProductInput is the payload accepted by CreateProduct.
// Price and Quantity are pointers so that a missing value is distinguishable from zero.
type CreateProductInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,max=100"`
}

// UpdateProductInput is the payload accepted by UpdateProduct. Unlike creation,
// an update must carry a strictly positive price.
type UpdateProductInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,max=100"`
}

func (in *CreateProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
}

func (in *UpdateProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	skus      *SKUGenerator
	publisher EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, skus *SKUGenerator, publisher EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		skus:      skus,
		publisher: publisher,
		validate:  newValidator(),
		logger:    logger,
	}
}

// CreateProduct validates the input, assigns a fresh SKU and stores the
// product under userID.
func (s *ProductService) CreateProduct(ctx context.Context, userID string, in CreateProductInput) (*models.Product, error) {
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		Category:    in.Category,
		CreatedBy:   userID,
	}

	// Generate checks the store before handing out a SKU, but a concurrent
	// create can still claim it before our insert lands. The unique index
	// rejects the second writer; regenerate in that case.
	var lastErr error
	for attempt := 0; attempt < s.skus.MaxAttempts(); attempt++ {
		sku, err := s.skus.Generate(ctx, product.Category)
		if err != nil {
			return nil, err
		}
		product.ID = ""
		product.SKU = sku
		err = s.repo.Create(ctx, product)
		if err == nil {
			s.logger.Info("product created",
				zap.String("product_id", product.ID),
				zap.String("sku", product.SKU),
				zap.String("owner_id", userID))
			s.publish(ctx, models.NewProductEvent(models.ProductCreated, product))
			return product, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateSKU) {
			return nil, NewInternalError("failed to create product", err)
		}
		s.logger.Warn("sku collision on insert, regenerating",
			zap.String("sku", sku), zap.Int("attempt", attempt+1))
		lastErr = err
	}
	return nil, NewConflictError("Duplicate SKU generated", lastErr)
}

// ListProducts returns every product owned by userID in a stable order.
func (s *ProductService) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	products, err := s.repo.FindAllByOwner(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to list products", err)
	}
	return products, nil
}

// GetProduct returns the product if it exists and belongs to userID. A product
// owned by someone else is reported as not found.
func (s *ProductService) GetProduct(ctx context.Context, userID, productID string) (*models.Product, error) {
	product, err := s.repo.FindOwned(ctx, productID, userID)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return product, nil
}

// LookupProduct returns the product regardless of owner.
func (s *ProductService) LookupProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return product, nil
}

// UpdateProduct replaces the mutable fields of a product owned by userID.
// ID, SKU and owner never change.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, productID string, in UpdateProductInput) (*models.Product, error) {
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	product, err := s.repo.FindOwned(ctx, productID, userID)
	if err != nil {
		return nil, s.lookupError(err)
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = *in.Price
	product.Quantity = *in.Quantity
	product.Category = in.Category

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, s.lookupError(err)
	}
	s.logger.Info("product updated", zap.String("product_id", product.ID), zap.String("owner_id", userID))
	s.publish(ctx, models.NewProductEvent(models.ProductUpdated, product))
	return product, nil
}

// DeleteProduct permanently removes a product owned by userID.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, productID string) error {
	product, err := s.repo.FindOwned(ctx, productID, userID)
	if err != nil {
		return s.lookupError(err)
	}
	if err := s.repo.DeleteOwned(ctx, productID, userID); err != nil {
		return s.lookupError(err)
	}
	s.logger.Info("product deleted", zap.String("product_id", productID), zap.String("owner_id", userID))
	s.publish(ctx, models.NewProductEvent(models.ProductDeleted, product))
	return nil
}

func (s *ProductService) lookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NewNotFoundError("Product not found")
	}
	return NewInternalError("product store failure", err)
}

// publish is best effort: the mutation is already committed.
func (s *ProductService) publish(ctx context.Context, event models.ProductEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", string(event.Type)),
			zap.String("product_id", event.ProductID),
			zap.Error(err))
	}
}
