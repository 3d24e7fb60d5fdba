package promotions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/promotions/calculator"
)

func TestBuild_RejectsDuplicateNames(t *testing.T) {
	_, err := Build(
		calculator.FlatRate{Amount: decimal.NewFromInt(5)},
		calculator.FlatRate{Amount: decimal.NewFromInt(10)},
	)
	require.Error(t, err)

	_, err = Build(nil)
	require.Error(t, err)
}

func TestLookupAndNames(t *testing.T) {
	env := Default()

	c, err := env.Lookup(calculator.FlatRateName)
	require.NoError(t, err)
	require.Equal(t, calculator.FlatRateName, c.Name())

	_, err = env.Lookup("does_not_exist")
	require.ErrorIs(t, err, ErrUnknownCalculator)

	require.Equal(t, []string{
		calculator.FlatRateName,
		calculator.FlatPercentItemTotalName,
		calculator.FlexiRateName,
		calculator.PerItemName,
		calculator.TieredPercentName,
	}, env.Names())
}

func TestReconcile(t *testing.T) {
	env := Default()

	order := &ordersdomain.Order{State: ordersdomain.StateCart}
	require.NoError(t, order.AddItem(100, 2, decimal.NewFromInt(50)))

	order.AppliedPromotion = calculator.FlatPercentItemTotalName
	require.NoError(t, env.Reconcile(order))
	require.True(t, order.PromoTotal.Equal(decimal.NewFromInt(10)))

	// Clearing the promotion zeroes the total again.
	order.AppliedPromotion = ""
	require.NoError(t, env.Reconcile(order))
	require.True(t, order.PromoTotal.IsZero())

	order.AppliedPromotion = "does_not_exist"
	require.ErrorIs(t, env.Reconcile(order), ErrUnknownCalculator)
}
