package calculator

import (
	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// FlatRateName identifies the fixed-amount discount calculator.
const FlatRateName = "flat_rate"

// FlatRate grants a fixed discount amount regardless of order size.
type FlatRate struct {
	Amount decimal.Decimal
}

func (c FlatRate) Name() string { return FlatRateName }

func (c FlatRate) Compute(order *ordersdomain.Order) decimal.Decimal {
	if order.Empty() {
		return decimal.Zero
	}
	return clamp(c.Amount, order)
}
