package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State enumerates the order lifecycle subset relevant to cart
// association. A cart is the only incomplete state; merged and complete
// are terminal for the association logic.
type State string

const (
	StateCart     State = "cart"
	StateComplete State = "complete"
	StateMerged   State = "merged"
	StateCanceled State = "canceled"
)

var (
	ErrNotCart          = errors.New("order is no longer an open cart")
	ErrCrossStoreMerge  = errors.New("orders from different stores cannot be merged")
	ErrCurrencyMismatch = errors.New("orders with different currencies cannot be merged")
)

// Order models a cart owned by exactly one store and optionally a user.
// Guests are recognized by the opaque Token carried in a signed cookie.
type Order struct {
	ID           int64
	Number       string
	Token        string
	State        State
	Email        string
	UserID       *int64
	StoreID      int64
	Currency     string
	LineItems    []LineItem
	// AppliedPromotion names the promotion calculator attached to the
	// cart; PromoTotal is recomputed through the promotions environment
	// whenever the item set changes.
	AppliedPromotion string
	PromoTotal       decimal.Decimal
	MergedIntoID     *int64
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewCart builds a fresh incomplete order for the given store, stamped
// with a generated token and number. userID stays nil for guests.
func NewCart(storeID int64, currency string, userID *int64) *Order {
	return &Order{
		Number:   GenerateNumber(),
		Token:    GenerateToken(),
		State:    StateCart,
		UserID:   userID,
		StoreID:  storeID,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// NewEmptyOrder is the sentinel handed to callers when no order could be
// resolved: a valid zero-item cart scoped to the store, never persisted
// by the association logic itself.
func NewEmptyOrder(storeID int64, currency string) *Order {
	return &Order{
		State:    StateCart,
		StoreID:  storeID,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// GenerateToken produces the opaque guest identifier.
func GenerateToken() string {
	return uuid.NewString()
}

// GenerateNumber produces a human-facing order number.
func GenerateNumber() string {
	u := uuid.New()
	return fmt.Sprintf("R%09d", binary.BigEndian.Uint64(u[:8])%1_000_000_000)
}

// Persisted reports whether the order has a repository identity.
func (o *Order) Persisted() bool {
	return o != nil && o.ID != 0
}

// IsCart reports whether the order is still an open, incomplete cart.
func (o *Order) IsCart() bool {
	return o != nil && o.State == StateCart
}

// ItemCount sums line item quantities.
func (o *Order) ItemCount() int32 {
	if o == nil {
		return 0
	}
	var count int32
	for _, item := range o.LineItems {
		count += item.Quantity
	}
	return count
}

// Empty reports whether the cart holds no items.
func (o *Order) Empty() bool {
	return o.ItemCount() == 0
}

// ItemTotal sums the extended prices of all line items.
func (o *Order) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.LineItems {
		total = total.Add(item.Amount())
	}
	return total
}

// Total is the item total less any applied promotion.
func (o *Order) Total() decimal.Decimal {
	return o.ItemTotal().Sub(o.PromoTotal)
}

// AddItem merges a variant into the cart, bumping quantity when the
// variant is already present.
func (o *Order) AddItem(variantID int64, quantity int32, unitPrice decimal.Decimal) error {
	if !o.IsCart() {
		return ErrNotCart
	}
	if quantity <= 0 {
		return errors.New("quantity must be greater than zero")
	}
	for i := range o.LineItems {
		if o.LineItems[i].VariantID == variantID {
			o.LineItems[i].Quantity += quantity
			return nil
		}
	}
	o.LineItems = append(o.LineItems, LineItem{
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	return nil
}

// AssociateUser attaches a user identity to a guest cart. Idempotent:
// already-associated orders and orders with a non-blank email are left
// untouched.
func (o *Order) AssociateUser(userID int64, email string) bool {
	if !o.IsCart() {
		return false
	}
	if o.UserID != nil && *o.UserID == userID {
		return false
	}
	if strings.TrimSpace(o.Email) != "" {
		return false
	}
	o.UserID = &userID
	o.Email = strings.TrimSpace(email)
	return true
}

// Merge absorbs another incomplete order from the same store into this
// one: line items combine by variant and the other order transitions to
// the terminal merged state. Cross-store or cross-currency merges are
// domain errors that leave both orders intact.
func (o *Order) Merge(other *Order) error {
	if other == nil || other.ID == o.ID {
		return nil
	}
	if !o.IsCart() || !other.IsCart() {
		return ErrNotCart
	}
	if o.StoreID != other.StoreID {
		return ErrCrossStoreMerge
	}
	if o.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	for _, item := range other.LineItems {
		absorbed := false
		for i := range o.LineItems {
			if o.LineItems[i].VariantID == item.VariantID {
				o.LineItems[i].Quantity += item.Quantity
				absorbed = true
				break
			}
		}
		if !absorbed {
			o.LineItems = append(o.LineItems, LineItem{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}
	if o.AppliedPromotion == "" {
		o.AppliedPromotion = other.AppliedPromotion
	}
	other.State = StateMerged
	other.MergedIntoID = &o.ID
	return nil
}

// Complete closes the cart; a completed order is immutable to the
// association logic.
func (o *Order) Complete(at time.Time) error {
	if !o.IsCart() {
		return ErrNotCart
	}
	o.State = StateComplete
	o.CompletedAt = &at
	return nil
}
