package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// LineItem is the HTTP representation of a cart line.
type LineItem struct {
	ID        int64  `json:"id,omitempty"`
	VariantID int64  `json:"variantId"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Amount    string `json:"amount"`
}

// Cart is the HTTP representation of the current order. The guest token
// travels in a signed cookie, never in the payload.
type Cart struct {
	ID               int64      `json:"id,omitempty"`
	Number           string     `json:"number,omitempty"`
	State            string     `json:"state"`
	Email            string     `json:"email,omitempty"`
	Currency         string     `json:"currency"`
	LineItems        []LineItem `json:"lineItems"`
	ItemCount        int32      `json:"itemCount"`
	ItemTotal        string     `json:"itemTotal"`
	AppliedPromotion string     `json:"appliedPromotion,omitempty"`
	PromoTotal       string     `json:"promoTotal"`
	Total            string     `json:"total"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt,omitempty"`
}

// AddLineItem captures the inbound payload adding a variant to the cart.
type AddLineItem struct {
	VariantID int64  `json:"variantId" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unitPrice" binding:"required"`
}

// ParseUnitPrice validates and converts the payload's price string.
func (a AddLineItem) ParseUnitPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(a.UnitPrice)
}

// FromDomainOrder maps a domain order into a transport Cart.
func FromDomainOrder(o *domain.Order) Cart {
	items := make([]LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, LineItem{
			ID:        li.ID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.StringFixed(2),
			Amount:    li.Amount().StringFixed(2),
		})
	}
	return Cart{
		ID:               o.ID,
		Number:           o.Number,
		State:            string(o.State),
		Email:            o.Email,
		Currency:         o.Currency,
		LineItems:        items,
		ItemCount:        o.ItemCount(),
		ItemTotal:        o.ItemTotal().StringFixed(2),
		AppliedPromotion: o.AppliedPromotion,
		PromoTotal:       o.PromoTotal.StringFixed(2),
		Total:            o.Total().StringFixed(2),
		CompletedAt:      o.CompletedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
