package repository

import (
	"context"
	"errors"
	"time"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type orderDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Items      []models.OrderItem `bson:"items"`
	SubTotal   float64            `bson:"sub_total"`
	Tax        float64            `bson:"tax"`
	GrandTotal float64            `bson:"grand_total"`
	Currency   string             `bson:"currency"`
	Status     models.OrderStatus `bson:"status"`
	PaymentID  string             `bson:"payment_id"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func newOrderDocument(o *models.Order) orderDocument {
	return orderDocument{
		UserID:     o.UserID,
		Items:      o.Items,
		SubTotal:   o.SubTotal,
		Tax:        o.Tax,
		GrandTotal: o.GrandTotal,
		Currency:   o.Currency,
		Status:     o.Status,
		PaymentID:  o.PaymentID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (d orderDocument) toModel() *models.Order {
	return &models.Order{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Items:      d.Items,
		SubTotal:   d.SubTotal,
		Tax:        d.Tax,
		GrandTotal: d.GrandTotal,
		Currency:   d.Currency,
		Status:     d.Status,
		PaymentID:  d.PaymentID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoOrderStore implements OrderStore on a MongoDB collection.
type MongoOrderStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// ConnectMongo dials MongoDB and verifies the connection.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func NewMongoOrderStore(client *mongo.Client, cfg config.MongoConfig, logger *zap.Logger) *MongoOrderStore {
	return &MongoOrderStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.Named("mongo-store"),
	}
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.Order) (string, error) {
	s.logger.Debug("Inserting order", zap.String("user_id", order.UserID))

	res, err := s.collection.InsertOne(ctx, newOrderDocument(order))
	if err != nil {
		s.logger.Error("Failed to insert order", zap.String("user_id", order.UserID), zap.Error(err))
		return "", err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("mongo returned a non-ObjectID _id")
	}

	s.logger.Info("Order inserted", zap.String("order_id", oid.Hex()), zap.String("user_id", order.UserID))
	return oid.Hex(), nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := ParseOrderID(id)
	if err != nil {
		return nil, err
	}

	var doc orderDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	return doc.toModel(), nil
}

func (s *MongoOrderStore) FindByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		s.logger.Error("Failed to query orders", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	orders := make([]*models.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toModel())
	}
	return orders, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, bool, error) {
	oid, err := ParseOrderID(id)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": oid, "status": bson.M{"$ne": status}}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either absent or already in the target status.
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	if err != nil {
		s.logger.Error("Failed to update order status", zap.String("order_id", id), zap.Error(err))
		return nil, false, err
	}

	s.logger.Info("Order status updated", zap.String("order_id", id), zap.String("status", string(status)))
	return doc.toModel(), true, nil
}

func (s *MongoOrderStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
