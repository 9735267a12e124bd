package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CWS-Project/order-service/internal/clients"
	"github.com/CWS-Project/order-service/internal/logging"
	"github.com/CWS-Project/order-service/internal/models"
	"go.uber.org/zap"
)

// createState carries the intermediate results of one CreateFromCart run.
type createState struct {
	userID string
	cart   []models.CartItem
	items  []models.OrderItem
	total  OrderTotal
	intent *models.PaymentIntent
	order  *models.Order
}

type createStep struct {
	name string
	run  func(ctx context.Context, st *createState) error
}

// createSteps is the ordered create pipeline. Each step either advances the
// state or aborts the run with a classified error.
func (s *OrderService) createSteps() []createStep {
	return []createStep{
		{name: "fetch_cart", run: s.fetchCart},
		{name: "check_cart", run: checkCart},
		{name: "enrich_items", run: s.enrichItems},
		{name: "price_order", run: s.priceOrder},
		{name: "issue_payment_intent", run: s.issuePaymentIntent},
		{name: "persist", run: s.persistOrder},
	}
}

// CreateFromCart turns the user's cart into a pending order with an attached
// payment intent. Nothing is persisted unless every step succeeds, and the
// new order is not written to the cache.
func (s *OrderService) CreateFromCart(ctx context.Context, userID string) (*models.CreateOrderResult, error) {
	log := logging.FromContext(ctx, s.logger).With(zap.String("user_id", userID))
	log.Info("Creating order from cart")

	st := &createState{userID: userID}
	for _, step := range s.createSteps() {
		if err := step.run(ctx, st); err != nil {
			log.Warn("Create order step failed", zap.String("step", step.name), zap.Error(err))
			s.recordFailure("create_from_cart", err)
			return nil, err
		}
	}

	s.metrics.OrdersCreated.Inc()

	if err := s.events.PublishOrderCreated(ctx, st.order); err != nil {
		// Log but don't fail
		log.Error("Failed to publish order created event", zap.String("order_id", st.order.ID), zap.Error(err))
	}

	log.Info("Order created successfully",
		zap.String("order_id", st.order.ID),
		zap.Float64("grand_total", st.order.GrandTotal),
		zap.String("payment_id", st.order.PaymentID),
	)

	return &models.CreateOrderResult{
		OrderID:    st.order.ID,
		GrandTotal: st.order.GrandTotal,
	}, nil
}

func (s *OrderService) fetchCart(ctx context.Context, st *createState) error {
	start := time.Now()
	cart, err := s.carts.GetCart(ctx, st.userID)
	s.metrics.ObserveUpstream("cart", start, err)
	if err != nil {
		return fmt.Errorf("%w: cart: %w", ErrUpstreamUnavailable, err)
	}
	st.cart = cart
	return nil
}

func checkCart(_ context.Context, st *createState) error {
	if len(st.cart) == 0 {
		return ErrEmptyCart
	}
	return validateCartItems(st.cart)
}

// enrichItems prices each line sequentially and stops at the first failure.
func (s *OrderService) enrichItems(ctx context.Context, st *createState) error {
	items := make([]models.OrderItem, 0, len(st.cart))
	for _, line := range st.cart {
		start := time.Now()
		product, err := s.products.GetProduct(ctx, line.ProductID)
		s.metrics.ObserveUpstream("product", start, err)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrProductUnavailable, line.ProductID, err)
		}
		if product == nil {
			return fmt.Errorf("%w: %s: empty product", ErrProductUnavailable, line.ProductID)
		}

		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Qty(),
			Price:     product.Price,
			Name:      product.Name,
		})
	}
	st.items = items
	return nil
}

func (s *OrderService) priceOrder(_ context.Context, st *createState) error {
	st.total = CalculateOrderTotal(st.items, s.config.TaxRate)
	return nil
}

func (s *OrderService) issuePaymentIntent(ctx context.Context, st *createState) error {
	params := clients.PaymentIntentParams{
		Amount:      MinorUnits(st.total.GrandTotal),
		Currency:    s.config.Currency,
		Description: "Payment for order by " + st.userID,
		// Provider metadata values are capped at 500 characters, so only the
		// user id goes here. Line items live on the stored order.
		Metadata: map[string]string{
			"user_id": st.userID,
		},
	}

	start := time.Now()
	intent, err := s.payments.CreatePaymentIntent(ctx, params)
	s.metrics.ObserveUpstream("payment", start, err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPaymentIntentFailed, err)
	}
	st.intent = intent
	return nil
}

func (s *OrderService) persistOrder(ctx context.Context, st *createState) error {
	now := s.now()
	order := &models.Order{
		UserID:     st.userID,
		Items:      st.items,
		SubTotal:   st.total.SubTotal.InexactFloat64(),
		Tax:        st.total.Tax.InexactFloat64(),
		GrandTotal: st.total.GrandTotal.InexactFloat64(),
		Currency:   s.config.Currency,
		Status:     models.OrderStatusPending,
		PaymentID:  st.intent.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	id, err := s.store.Insert(ctx, order)
	if err != nil {
		// The payment intent is not voided; the id is logged for reconciliation.
		logging.FromContext(ctx, s.logger).Error("Order not persisted after payment intent was created",
			zap.String("user_id", st.userID),
			zap.String("payment_id", st.intent.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	order.ID = id
	st.order = order
	return nil
}
