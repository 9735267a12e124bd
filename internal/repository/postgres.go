package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/models"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const orderColumns = `id, user_id, items, sub_total, tax, grand_total, currency, status, payment_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresOrderStore implements OrderStore using PostgreSQL. Ids are minted
// as ObjectID hex so both stores expose the same id format.
type PostgresOrderStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres opens and pings a connection pool.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewPostgresOrderStore(db *sql.DB, logger *zap.Logger) *PostgresOrderStore {
	return &PostgresOrderStore{
		db:     db,
		logger: logger.Named("postgres-store"),
	}
}

func (s *PostgresOrderStore) Insert(ctx context.Context, order *models.Order) (string, error) {
	s.logger.Debug("Inserting order", zap.String("user_id", order.UserID))

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return "", err
	}

	id := NewOrderID()
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		order.UserID,
		itemsJSON,
		order.SubTotal,
		order.Tax,
		order.GrandTotal,
		order.Currency,
		order.Status,
		order.PaymentID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("Failed to insert order", zap.String("user_id", order.UserID), zap.Error(err))
		return "", err
	}

	s.logger.Info("Order inserted", zap.String("order_id", id), zap.String("user_id", order.UserID))
	return id, nil
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if _, err := ParseOrderID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (s *PostgresOrderStore) FindByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		s.logger.Error("Failed to query orders", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, bool, error) {
	if _, err := ParseOrderID(id); err != nil {
		return nil, false, err
	}

	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2 RETURNING ` + orderColumns

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, id, status, time.Now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
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
	return order, true, nil
}

func (s *PostgresOrderStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&order.SubTotal,
		&order.Tax,
		&order.GrandTotal,
		&order.Currency,
		&order.Status,
		&order.PaymentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	return &order, nil
}
