package models

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

// Order is the canonical order record. Monetary fields are rounded to two
// fractional digits and GrandTotal always equals SubTotal + Tax.
type Order struct {
	ID         string      `json:"_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	SubTotal   float64     `json:"sub_total"`
	Tax        float64     `json:"tax"`
	GrandTotal float64     `json:"grand_total"`
	Currency   string      `json:"currency"`
	Status     OrderStatus `json:"status"`
	PaymentID  string      `json:"payment_id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem is a cart line snapshotted with the catalog price and name at
// order creation.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
	Name      string  `json:"name" bson:"name"`
}

// CartItem is a line returned by the cart service. Quantity is optional
// upstream and defaults to 1.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// Qty returns the line quantity, treating an absent value as 1.
func (c CartItem) Qty() int {
	if c.Quantity == nil {
		return 1
	}
	return *c.Quantity
}

// Product is the subset of catalog data the order workflow consumes.
type Product struct {
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

// PaymentIntent is the provider's handle for a created payment intent.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type CreateOrderRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type CreateOrderResult struct {
	OrderID    string  `json:"order_id"`
	GrandTotal float64 `json:"grand_total"`
}

type MarkPaidResult struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
}
