package service

import (
	"context"
	"errors"
	"time"

	"github.com/CWS-Project/order-service/internal/clients"
	"github.com/CWS-Project/order-service/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Insert(ctx context.Context, order *models.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) FindByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, bool, error) {
	args := m.Called(ctx, id, status)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *MockOrderStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCartLookup struct {
	mock.Mock
}

func (m *MockCartLookup) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.([]models.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPaymentIssuer struct {
	mock.Mock
}

func (m *MockPaymentIssuer) CreatePaymentIntent(ctx context.Context, params clients.PaymentIntentParams) (*models.PaymentIntent, error) {
	args := m.Called(ctx, params)
	if p := args.Get(0); p != nil {
		return p.(*models.PaymentIntent), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockEventPublisher) PublishOrderPaid(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) (string, bool, error) { return "", false, errCacheDown }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error { return errCacheDown }
func (brokenCache) Ping(context.Context) error           { return errCacheDown }
