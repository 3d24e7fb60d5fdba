package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewCart_GeneratesIdentityAndNormalizesCurrency(t *testing.T) {
	userID := int64(42)
	cart := NewCart(5, " usd ", &userID)

	require.Equal(t, StateCart, cart.State)
	require.Equal(t, int64(5), cart.StoreID)
	require.Equal(t, "USD", cart.Currency)
	require.NotEmpty(t, cart.Token)
	require.Regexp(t, `^R\d{9}$`, cart.Number)
	require.Equal(t, userID, *cart.UserID)

	other := NewCart(5, "USD", nil)
	require.NotEqual(t, cart.Token, other.Token)
	require.Nil(t, other.UserID)
}

func TestNewEmptyOrder_IsUnpersistedSentinel(t *testing.T) {
	order := NewEmptyOrder(3, "eur")

	require.False(t, order.Persisted())
	require.True(t, order.IsCart())
	require.True(t, order.Empty())
	require.Empty(t, order.Token)
	require.Equal(t, "EUR", order.Currency)
}

func TestAddItem_BumpsQuantityForExistingVariant(t *testing.T) {
	cart := NewCart(1, "USD", nil)

	require.NoError(t, cart.AddItem(100, 2, decimal.NewFromInt(10)))
	require.NoError(t, cart.AddItem(200, 1, decimal.NewFromInt(5)))
	require.NoError(t, cart.AddItem(100, 3, decimal.NewFromInt(10)))

	require.Len(t, cart.LineItems, 2)
	require.Equal(t, int32(5), cart.LineItems[0].Quantity)
	require.Equal(t, int32(6), cart.ItemCount())
	require.True(t, cart.ItemTotal().Equal(decimal.NewFromInt(55)))
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	cart := NewCart(1, "USD", nil)
	require.Error(t, cart.AddItem(100, 0, decimal.NewFromInt(10)))

	require.NoError(t, cart.Complete(time.Now()))
	require.ErrorIs(t, cart.AddItem(100, 1, decimal.NewFromInt(10)), ErrNotCart)
}

func TestTotal_SubtractsPromotion(t *testing.T) {
	cart := NewCart(1, "USD", nil)
	require.NoError(t, cart.AddItem(100, 2, decimal.NewFromFloat(19.99)))
	cart.PromoTotal = decimal.NewFromFloat(5.00)

	require.True(t, cart.Total().Equal(decimal.NewFromFloat(34.98)))
}

func TestAssociateUser(t *testing.T) {
	cart := NewCart(1, "USD", nil)

	require.True(t, cart.AssociateUser(7, "jo@example.com"))
	require.Equal(t, int64(7), *cart.UserID)
	require.Equal(t, "jo@example.com", cart.Email)

	// Idempotent for the same user.
	require.False(t, cart.AssociateUser(7, "jo@example.com"))

	// An order that already has an email keeps it.
	require.False(t, cart.AssociateUser(8, "other@example.com"))
	require.Equal(t, int64(7), *cart.UserID)

	done := NewCart(1, "USD", nil)
	require.NoError(t, done.Complete(time.Now()))
	require.False(t, done.AssociateUser(7, "jo@example.com"))
}

func TestMerge_CombinesItemsAndClosesOther(t *testing.T) {
	current := NewCart(1, "USD", nil)
	current.ID = 10
	require.NoError(t, current.AddItem(100, 1, decimal.NewFromInt(10)))

	guest := NewCart(1, "USD", nil)
	guest.ID = 11
	require.NoError(t, guest.AddItem(100, 2, decimal.NewFromInt(10)))
	require.NoError(t, guest.AddItem(200, 1, decimal.NewFromInt(3)))
	guest.AppliedPromotion = "ten_percent_off"

	require.NoError(t, current.Merge(guest))

	require.Len(t, current.LineItems, 2)
	require.Equal(t, int32(3), current.LineItems[0].Quantity)
	require.Equal(t, "ten_percent_off", current.AppliedPromotion)
	require.Equal(t, StateMerged, guest.State)
	require.Equal(t, int64(10), *guest.MergedIntoID)
}

func TestMerge_KeepsExistingPromotion(t *testing.T) {
	current := NewCart(1, "USD", nil)
	current.ID = 10
	current.AppliedPromotion = "free_shipping"

	guest := NewCart(1, "USD", nil)
	guest.ID = 11
	guest.AppliedPromotion = "ten_percent_off"

	require.NoError(t, current.Merge(guest))
	require.Equal(t, "free_shipping", current.AppliedPromotion)
}

func TestMerge_Rejections(t *testing.T) {
	current := NewCart(1, "USD", nil)
	current.ID = 10

	crossStore := NewCart(2, "USD", nil)
	crossStore.ID = 11
	require.ErrorIs(t, current.Merge(crossStore), ErrCrossStoreMerge)
	require.Equal(t, StateCart, crossStore.State)

	crossCurrency := NewCart(1, "EUR", nil)
	crossCurrency.ID = 12
	require.ErrorIs(t, current.Merge(crossCurrency), ErrCurrencyMismatch)

	completed := NewCart(1, "USD", nil)
	completed.ID = 13
	require.NoError(t, completed.Complete(time.Now()))
	require.ErrorIs(t, current.Merge(completed), ErrNotCart)

	// Merging an order into itself or nil is a no-op.
	require.NoError(t, current.Merge(nil))
	self := *current
	require.NoError(t, current.Merge(&self))
	require.Empty(t, current.LineItems)
}

func TestComplete(t *testing.T) {
	cart := NewCart(1, "USD", nil)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, cart.Complete(at))
	require.Equal(t, StateComplete, cart.State)
	require.Equal(t, at, *cart.CompletedAt)
	require.ErrorIs(t, cart.Complete(at), ErrNotCart)
}

func TestLineItemAmount(t *testing.T) {
	item := LineItem{VariantID: 1, Quantity: 3, UnitPrice: decimal.NewFromFloat(2.50)}
	require.True(t, item.Amount().Equal(decimal.NewFromFloat(7.50)))
}
