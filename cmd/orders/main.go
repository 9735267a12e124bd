package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CWS-Project/order-service/internal/clients"
	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/events"
	"github.com/CWS-Project/order-service/internal/handlers"
	"github.com/CWS-Project/order-service/internal/logging"
	"github.com/CWS-Project/order-service/internal/metrics"
	"github.com/CWS-Project/order-service/internal/repository"
	"github.com/CWS-Project/order-service/internal/server"
	"github.com/CWS-Project/order-service/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type eventPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, closeStore, err := initStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize order store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	cache, closeCache, err := initCache(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
	}
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var publisher eventPublisher = events.NoopPublisher{}
	if cfg.Features.EnableOrderEvents {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
	}
	defer publisher.Close()

	if cfg.Stripe.APIKey == "" {
		logger.Warn("STRIPE_API_KEY is not set, order creation will fail at the payment step")
	}

	orderService := service.NewOrderService(
		store,
		cache,
		clients.NewCartClient(cfg.AuthService, logger),
		clients.NewProductClient(cfg.ProductService, logger),
		clients.NewStripePaymentClient(cfg.Stripe, logger),
		publisher,
		m,
		cfg.Orders,
		logger,
	)

	h := handlers.NewHandlers(orderService, map[string]handlers.Pinger{
		"store": store,
		"cache": cache,
	}, logger)

	srv := server.New(h, cfg, m, reg, logger)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("store_driver", cfg.Store.Driver),
			zap.String("cache_driver", cfg.Cache.Driver),
			zap.Bool("enable_order_events", cfg.Features.EnableOrderEvents),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.OrderStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, err := repository.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("MongoDB connected", zap.String("database", cfg.Mongo.Database))

		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return repository.NewMongoOrderStore(client, cfg.Mongo, logger), closeFn, nil

	case config.StoreDriverPostgres:
		db, err := repository.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("name", cfg.Database.Name),
		)

		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", zap.Error(err))
			}
		}
		return repository.NewPostgresOrderStore(db, logger), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func initCache(cfg *config.Config, logger *zap.Logger) (repository.Cache, func(), error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		c := repository.NewRedisCache(cfg.Redis, logger)
		closeFn := func() {
			if err := c.Close(); err != nil {
				logger.Error("Failed to close Redis client", zap.Error(err))
			}
		}
		return c, closeFn, nil

	case config.CacheDriverMemory:
		c, err := repository.NewMemoryCache(cfg.Cache.MemorySize, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}
