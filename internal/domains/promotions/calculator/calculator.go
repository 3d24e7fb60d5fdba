// Package calculator holds the promotion calculator variants that can be
// registered in the promotions environment. Each variant implements one
// strategy behind the shared Calculator interface.
package calculator

import (
	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// Calculator computes the discount a promotion grants for an order.
// Implementations must be pure: no I/O, no mutation of the order.
type Calculator interface {
	Name() string
	Compute(order *ordersdomain.Order) decimal.Decimal
}

// clamp keeps a discount within [0, itemTotal] so a promotion can never
// push an order total negative.
func clamp(amount decimal.Decimal, order *ordersdomain.Order) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if itemTotal := order.ItemTotal(); amount.GreaterThan(itemTotal) {
		return itemTotal
	}
	return amount
}
