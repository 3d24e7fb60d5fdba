package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
)

func orderWith(items ...ordersdomain.LineItem) *ordersdomain.Order {
	return &ordersdomain.Order{State: ordersdomain.StateCart, LineItems: items}
}

func item(quantity int32, unitPrice float64) ordersdomain.LineItem {
	return ordersdomain.LineItem{VariantID: int64(quantity), Quantity: quantity, UnitPrice: decimal.NewFromFloat(unitPrice)}
}

func TestFlatRate(t *testing.T) {
	calc := FlatRate{Amount: decimal.NewFromInt(5)}

	require.True(t, calc.Compute(orderWith(item(1, 20))).Equal(decimal.NewFromInt(5)))

	// Empty carts earn nothing.
	require.True(t, calc.Compute(orderWith()).IsZero())

	// The discount never exceeds the item total.
	require.True(t, calc.Compute(orderWith(item(1, 3))).Equal(decimal.NewFromInt(3)))
}

func TestFlatPercentItemTotal(t *testing.T) {
	calc := FlatPercentItemTotal{Percent: decimal.NewFromInt(10)}

	got := calc.Compute(orderWith(item(2, 19.99)))
	require.True(t, got.Equal(decimal.NewFromFloat(4.00)), "got %s", got)

	require.True(t, calc.Compute(orderWith()).IsZero())
}

func TestFlexiRate(t *testing.T) {
	calc := FlexiRate{FirstItem: decimal.NewFromInt(3), AdditionalItem: decimal.NewFromInt(1), MaxItems: 4}

	require.True(t, calc.Compute(orderWith()).IsZero())
	require.True(t, calc.Compute(orderWith(item(1, 50))).Equal(decimal.NewFromInt(3)))
	require.True(t, calc.Compute(orderWith(item(3, 50))).Equal(decimal.NewFromInt(5)))

	// Quantities past MaxItems stop accruing.
	require.True(t, calc.Compute(orderWith(item(10, 50))).Equal(decimal.NewFromInt(6)))
}

func TestPerItem(t *testing.T) {
	calc := PerItem{Amount: decimal.NewFromInt(2)}

	require.True(t, calc.Compute(orderWith(item(3, 10))).Equal(decimal.NewFromInt(6)))
	require.True(t, calc.Compute(orderWith()).IsZero())
}

func TestTieredPercent(t *testing.T) {
	calc := TieredPercent{
		BasePercent: decimal.NewFromInt(5),
		Tiers: []Tier{
			{Threshold: decimal.NewFromInt(250), Percent: decimal.NewFromInt(15)},
			{Threshold: decimal.NewFromInt(100), Percent: decimal.NewFromInt(10)},
		},
	}

	// Below every threshold the base percentage applies.
	require.True(t, calc.Compute(orderWith(item(1, 50))).Equal(decimal.NewFromFloat(2.50)))

	// The highest reached tier wins regardless of declaration order.
	require.True(t, calc.Compute(orderWith(item(1, 100))).Equal(decimal.NewFromInt(10)))
	require.True(t, calc.Compute(orderWith(item(1, 300))).Equal(decimal.NewFromInt(45)))
}

func TestClamp_NegativeAmount(t *testing.T) {
	calc := FlatRate{Amount: decimal.NewFromInt(-5)}
	require.True(t, calc.Compute(orderWith(item(1, 20))).IsZero())
}
