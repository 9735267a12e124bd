package service

import (
	"fmt"
	"strings"

	"github.com/CWS-Project/order-service/internal/models"
)

// validateCartItems rejects lines the pricing step cannot handle.
func validateCartItems(items []models.CartItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("%w: line %d has no product_id", ErrInvalidCart, i)
		}
		if item.Qty() < 1 {
			return fmt.Errorf("%w: line %d has quantity %d", ErrInvalidCart, i, item.Qty())
		}
	}
	return nil
}
