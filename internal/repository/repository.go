package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CWS-Project/order-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no order matches the lookup.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidID is returned for ids that are not 24-char hex ObjectIDs.
	ErrInvalidID = errors.New("invalid order id")
)

var (
	_ OrderStore = (*MongoOrderStore)(nil)
	_ OrderStore = (*PostgresOrderStore)(nil)
	_ Cache      = (*RedisCache)(nil)
	_ Cache      = (*MemoryCache)(nil)
)

// OrderStore persists orders. Implementations assign ids on Insert.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (string, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]*models.Order, error)
	// UpdateStatus sets the status of the matching order and returns the
	// current record. changed is false when the order already had that
	// status. ErrNotFound if no order has the id.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (order *models.Order, changed bool, err error)
	Ping(ctx context.Context) error
}

// Cache stores opaque string values. A zero ttl means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// NewOrderID mints a new order id in ObjectID hex form.
func NewOrderID() string {
	return primitive.NewObjectID().Hex()
}

// ParseOrderID validates id as an ObjectID.
func ParseOrderID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
