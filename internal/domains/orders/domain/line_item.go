package domain

import "github.com/shopspring/decimal"

// LineItem is one variant/quantity entry in a cart.
type LineItem struct {
	ID        int64
	OrderID   int64
	VariantID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Amount is the extended price of the line.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
}
