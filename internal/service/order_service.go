package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/CWS-Project/order-service/internal/clients"
	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/logging"
	"github.com/CWS-Project/order-service/internal/metrics"
	"github.com/CWS-Project/order-service/internal/models"
	"github.com/CWS-Project/order-service/internal/repository"
	"go.uber.org/zap"
)

const (
	orderKeyPrefix      = "order:"
	userOrdersKeyPrefix = "orders:"

	cacheKindOrder      = "order"
	cacheKindUserOrders = "user_orders"
)

type CartLookup interface {
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
}

type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

type PaymentIntentIssuer interface {
	CreatePaymentIntent(ctx context.Context, params clients.PaymentIntentParams) (*models.PaymentIntent, error)
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderPaid(ctx context.Context, order *models.Order) error
}

// OrderService runs the order workflow: cart to priced order, cached reads
// and the pending to paid transition.
type OrderService struct {
	store    repository.OrderStore
	cache    repository.Cache
	carts    CartLookup
	products ProductLookup
	payments PaymentIntentIssuer
	events   EventPublisher
	metrics  *metrics.Metrics
	config   config.OrderConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	store repository.OrderStore,
	cache repository.Cache,
	carts CartLookup,
	products ProductLookup,
	payments PaymentIntentIssuer,
	events EventPublisher,
	m *metrics.Metrics,
	cfg config.OrderConfig,
	logger *zap.Logger,
) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = config.DefaultCurrency
	}

	return &OrderService{
		store:    store,
		cache:    cache,
		carts:    carts,
		products: products,
		payments: payments,
		events:   events,
		metrics:  m,
		config:   cfg,
		logger:   logger.Named("order-service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns the order with the given id, reading through the cache.
// Absent and malformed ids both yield ErrNotFound.
func (s *OrderService) GetByID(ctx context.Context, id string) (*models.Order, error) {
	log := logging.FromContext(ctx, s.logger)
	log.Debug("Getting order", zap.String("order_id", id))

	if _, err := repository.ParseOrderID(id); err != nil {
		s.recordFailure("get_by_id", ErrNotFound)
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	key := orderKeyPrefix + id

	var cached models.Order
	if s.readCache(ctx, key, cacheKindOrder, &cached) {
		return &cached, nil
	}

	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			s.recordFailure("get_by_id", ErrNotFound)
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		log.Error("Failed to fetch order", zap.String("order_id", id), zap.Error(err))
		s.recordFailure("get_by_id", ErrUpstreamUnavailable)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	s.writeCache(ctx, key, order, s.config.OrderTTL)
	return order, nil
}

// GetByUser returns every order owned by userID. An empty result is valid.
// On store failure the returned slice is empty, never nil.
func (s *OrderService) GetByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	log := logging.FromContext(ctx, s.logger)
	log.Debug("Getting orders for user", zap.String("user_id", userID))

	key := userOrdersKeyPrefix + userID

	var cached []*models.Order
	if s.readCache(ctx, key, cacheKindUserOrders, &cached) {
		if cached == nil {
			cached = []*models.Order{}
		}
		return cached, nil
	}

	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		log.Error("Failed to query orders", zap.String("user_id", userID), zap.Error(err))
		s.recordFailure("get_by_user", ErrUpstreamUnavailable)
		return []*models.Order{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	s.writeCache(ctx, key, orders, s.config.UserListTTL)
	return orders, nil
}

// MarkAsPaid moves the order to paid and drops its cached copy. The cached
// per-user list is left alone unless InvalidateUserList is set, so it can
// show the old status until its TTL runs out. Repeating the call on a paid
// order succeeds without counting or announcing a second transition.
func (s *OrderService) MarkAsPaid(ctx context.Context, id string) error {
	log := logging.FromContext(ctx, s.logger)
	log.Info("Marking order as paid", zap.String("order_id", id))

	order, changed, err := s.store.UpdateStatus(ctx, id, models.OrderStatusPaid)
	if err != nil {
		log.Warn("Failed to update order status", zap.String("order_id", id), zap.Error(err))
		s.recordFailure("mark_as_paid", ErrUpdateFailed)
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	// Recorded before invalidation: a retry after a cache fault reports
	// changed == false.
	if changed {
		s.metrics.OrdersPaid.Inc()
		if err := s.events.PublishOrderPaid(ctx, order); err != nil {
			// Log but don't fail
			log.Error("Failed to publish order paid event", zap.String("order_id", id), zap.Error(err))
		}
	}

	if err := s.cache.Delete(ctx, orderKeyPrefix+id); err != nil {
		log.Error("Failed to invalidate cached order", zap.String("order_id", id), zap.Error(err))
		s.recordFailure("mark_as_paid", ErrUpdateFailed)
		return fmt.Errorf("%w: invalidate cache: %w", ErrUpdateFailed, err)
	}

	if s.config.InvalidateUserList {
		if err := s.cache.Delete(ctx, userOrdersKeyPrefix+order.UserID); err != nil {
			log.Error("Failed to invalidate cached order list", zap.String("user_id", order.UserID), zap.Error(err))
			s.recordFailure("mark_as_paid", ErrUpdateFailed)
			return fmt.Errorf("%w: invalidate cache: %w", ErrUpdateFailed, err)
		}
	}

	if !changed {
		log.Info("Order already paid", zap.String("order_id", id))
		return nil
	}

	log.Info("Order marked as paid", zap.String("order_id", id), zap.String("user_id", order.UserID))
	return nil
}

// readCache decodes the entry at key into dst. Cache faults and undecodable
// entries count as misses.
func (s *OrderService) readCache(ctx context.Context, key, kind string, dst any) bool {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("Cache read failed, falling back to store", zap.String("key", key), zap.Error(err))
		s.metrics.CacheMiss(kind)
		return false
	}
	if !found {
		s.metrics.CacheMiss(kind)
		return false
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		logging.FromContext(ctx, s.logger).Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		s.metrics.CacheMiss(kind)
		return false
	}

	s.metrics.CacheHit(kind)
	return true
}

func (s *OrderService) writeCache(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), ttl); err != nil {
		// Log but don't fail
		logging.FromContext(ctx, s.logger).Warn("Failed to cache value", zap.String("key", key), zap.Error(err))
	}
}

func (s *OrderService) recordFailure(operation string, err error) {
	s.metrics.WorkflowFailures.WithLabelValues(operation, ErrorKind(err)).Inc()
}
