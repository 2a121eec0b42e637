package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"gudang/internal/app"
	"gudang/internal/config"
	"gudang/internal/models"
	"gudang/internal/services"
	"gudang/pkg/database"
	"gudang/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// runtime holds what every subcommand needs before doing its own work.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap(withDB bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}
	if !withDB {
		return rt, nil
	}
	db, err := database.Open(database.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN}, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	rt.db = db
	return rt, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		if err := database.Close(rt.db); err != nil {
			rt.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

// migrate creates the schema, optionally dropping the products table first.
func (rt *runtime) migrate(resetProducts bool) error {
	if resetProducts {
		rt.logger.Warn("dropping products table")
		if err := database.DropTable(rt.db, &models.Product{}); err != nil {
			return err
		}
	}
	if err := database.Migrate(rt.db, app.Models...); err != nil {
		return err
	}
	rt.logger.Info("database migrated", zap.Bool("reset_products", resetProducts))
	return nil
}

func newServeCmd() *cobra.Command {
	var resetProducts bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.migrate(resetProducts); err != nil {
				return err
			}

			deps := app.Deps{Config: rt.cfg, DB: rt.db, Logger: rt.logger}
			if rt.cfg.RabbitMQURL != "" {
				mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: rt.cfg.RabbitMQURL}, rt.logger.Named("rabbitmq"))
				if err != nil {
					return err
				}
				defer func() {
					if err := mq.Close(); err != nil {
						rt.logger.Warn("failed to close RabbitMQ client", zap.Error(err))
					}
				}()
				deps.Publisher = mq
			} else {
				rt.logger.Info("RABBITMQ_URL not set, product events disabled")
			}

			application := app.New(deps)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("starting server", zap.String("addr", rt.cfg.AppPort))
				errCh <- application.Fiber.Listen(rt.cfg.AppPort)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			rt.logger.Info("shutting down server")
			if err := application.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
				rt.logger.Error("error during shutdown", zap.Error(err))
			}
			rt.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetProducts, "reset-products", false, "drop the products table before migrating")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var resetProducts bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.migrate(resetProducts)
		},
	}
	cmd.Flags().BoolVar(&resetProducts, "reset-products", false, "drop the products table before migrating")
	return cmd
}

func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Log product events from RabbitMQ until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL must be set to consume events")
			}
			mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: rt.cfg.RabbitMQURL}, rt.logger.Named("rabbitmq"))
			if err != nil {
				return err
			}
			defer mq.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return mq.ConsumeProductEvents(ctx, logProductEvent(rt.logger.Named("events")))
		},
	}
}

func logProductEvent(logger *zap.Logger) rabbitmq.EventHandler {
	return func(_ context.Context, event models.ProductEvent) error {
		logger.Info("product event",
			zap.String("type", string(event.Type)),
			zap.String("product_id", event.ProductID),
			zap.String("sku", event.SKU),
			zap.String("owner_id", event.OwnerID),
			zap.Time("occurred_at", event.OccurredAt))
		return nil
	}
}

var _ services.EventPublisher = (*rabbitmq.Client)(nil)
