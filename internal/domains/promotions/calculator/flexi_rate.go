package calculator

import (
	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// FlexiRateName identifies the first-item/additional-item calculator.
const FlexiRateName = "flexi_rate"

// FlexiRate grants one amount for the first item and another for each
// additional item, up to MaxItems (zero means unbounded).
type FlexiRate struct {
	FirstItem      decimal.Decimal
	AdditionalItem decimal.Decimal
	MaxItems       int32
}

func (c FlexiRate) Name() string { return FlexiRateName }

func (c FlexiRate) Compute(order *ordersdomain.Order) decimal.Decimal {
	count := order.ItemCount()
	if count == 0 {
		return decimal.Zero
	}
	if c.MaxItems > 0 && count > c.MaxItems {
		count = c.MaxItems
	}
	amount := c.FirstItem.Add(c.AdditionalItem.Mul(decimal.NewFromInt32(count - 1)))
	return clamp(amount, order)
}
