package calculator

import (
	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// FlatPercentItemTotalName identifies the percentage-of-item-total calculator.
const FlatPercentItemTotalName = "flat_percent_item_total"

var hundred = decimal.NewFromInt(100)

// FlatPercentItemTotal grants a percentage of the order's item total.
type FlatPercentItemTotal struct {
	Percent decimal.Decimal
}

func (c FlatPercentItemTotal) Name() string { return FlatPercentItemTotalName }

func (c FlatPercentItemTotal) Compute(order *ordersdomain.Order) decimal.Decimal {
	amount := order.ItemTotal().Mul(c.Percent).Div(hundred).Round(2)
	return clamp(amount, order)
}
