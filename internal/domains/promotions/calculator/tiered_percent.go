package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// TieredPercentName identifies the spend-threshold percentage calculator.
const TieredPercentName = "tiered_percent"

// Tier grants Percent once the item total reaches Threshold.
type Tier struct {
	Threshold decimal.Decimal
	Percent   decimal.Decimal
}

// TieredPercent grants the base percentage, upgraded to the highest tier
// whose threshold the item total reaches.
type TieredPercent struct {
	BasePercent decimal.Decimal
	Tiers       []Tier
}

func (c TieredPercent) Name() string { return TieredPercentName }

func (c TieredPercent) Compute(order *ordersdomain.Order) decimal.Decimal {
	itemTotal := order.ItemTotal()
	percent := c.BasePercent
	tiers := append([]Tier(nil), c.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold.LessThan(tiers[j].Threshold) })
	for _, tier := range tiers {
		if itemTotal.GreaterThanOrEqual(tier.Threshold) {
			percent = tier.Percent
		}
	}
	amount := itemTotal.Mul(percent).Div(hundred).Round(2)
	return clamp(amount, order)
}
