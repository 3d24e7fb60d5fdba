package calculator

import (
	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// PerItemName identifies the per-item discount calculator.
const PerItemName = "per_item"

// PerItem grants a fixed amount for every item in the cart.
type PerItem struct {
	Amount decimal.Decimal
}

func (c PerItem) Name() string { return PerItemName }

func (c PerItem) Compute(order *ordersdomain.Order) decimal.Decimal {
	amount := c.Amount.Mul(decimal.NewFromInt32(order.ItemCount()))
	return clamp(amount, order)
}
