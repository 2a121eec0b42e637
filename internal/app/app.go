// Package app wires configuration, storage, services and handlers into a Fiber application.
package app

import (
	"context"
	"time"

	"gudang/internal/config"
	"gudang/internal/handlers"
	"gudang/internal/middleware"
	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in migration order.
var Models = []interface{}{&models.User{}, &models.Product{}}

// Deps are the resources the application is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// Publisher is optional; leave nil to disable product events.
	Publisher services.EventPublisher
	Logger    *zap.Logger
	// DisableRequestLog turns off the Fiber request logger (tests).
	DisableRequestLog bool
}

// App bundles the Fiber application with the services behind it.
type App struct {
	Fiber          *fiber.App
	AuthService    *services.AuthService
	ProductService *services.ProductService
}

// New builds the HTTP application.
func New(deps Deps) *App {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := deps.Config

	productRepo := repositories.NewGORMProductRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)

	skus := services.NewSKUGenerator(productRepo, services.WithMaxAttempts(cfg.SKUMaxAttempts))
	productService := services.NewProductService(productRepo, skus, deps.Publisher, log.Named("products"))
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log.Named("auth"))

	productHandler := handlers.NewProductHandler(productService, cfg.PublicProductReads, log.Named("http"))
	authHandler := handlers.NewAuthHandler(authService, log.Named("http"))

	app := fiber.New(fiber.Config{
		AppName: "gudang",
	})

	if !deps.DisableRequestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", healthCheck(deps.DB))

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService, log.Named("auth")))
	productHandler.RegisterRoutes(protected)

	return &App{
		Fiber:          app,
		AuthService:    authService,
		ProductService: productService,
	}
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success":  false,
				"status":   "degraded",
				"database": "unreachable",
				"time":     time.Now().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"status":   "healthy",
			"database": "connected",
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}
