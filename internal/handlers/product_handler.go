package handlers

import (
	"gudang/internal/middleware"
	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	// publicReads serves GET /products/:id without the ownership filter.
	publicReads bool
	logger      *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, publicReads bool, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		service:     service,
		publicReads: publicReads,
		logger:      logger,
	}
}

// RegisterRoutes registers the product routes. The router is expected to be
// behind middleware.AuthRequired.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, h.logger, err, failure{
			message:         "Error creating product",
			conflictStatus:  fiber.StatusBadRequest,
			conflictMessage: "Error creating product. Please try again.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleGetProducts lists the caller's products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err, failure{message: "Error fetching products"})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleGetProductByID returns one product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	var (
		product *models.Product
		err     error
	)
	if h.publicReads {
		product, err = h.service.LookupProduct(c.UserContext(), id)
	} else {
		product, err = h.service.GetProduct(c.UserContext(), middleware.UserID(c), id)
	}
	if err != nil {
		return respondError(c, h.logger, err, failure{message: "Error fetching product"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// HandleUpdateProduct replaces the mutable fields of one of the caller's products.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	var in services.UpdateProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), middleware.UserID(c), id, in)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Product not found or unauthorized",
			})
		}
		return respondError(c, h.logger, err, failure{message: "Error updating product"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// HandleDeleteProduct removes one of the caller's products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.service.DeleteProduct(c.UserContext(), middleware.UserID(c), id); err != nil {
		if services.KindOf(err) == services.KindNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Product not found or unauthorized",
			})
		}
		return respondError(c, h.logger, err, failure{message: "Error deleting product"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// productID returns the :id path parameter in canonical form if it is a valid UUID.
func productID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid product ID format",
	})
}
