package service

import (
	"github.com/CWS-Project/order-service/internal/models"
	"github.com/shopspring/decimal"
)

// OrderTotal represents the pricing breakdown for an order.
type OrderTotal struct {
	SubTotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// CalculateTax computes tax on subtotal, rounded half away from zero to two places.
func CalculateTax(subtotal decimal.Decimal, taxRate float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(taxRate)).Round(2)
}

// CalculateOrderTotal computes the full order breakdown from priced items.
func CalculateOrderTotal(items []models.OrderItem, taxRate float64) OrderTotal {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	tax := CalculateTax(subtotal, taxRate)
	return OrderTotal{
		SubTotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
}

// MinorUnits converts amount to the currency's minor unit (paise, cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
