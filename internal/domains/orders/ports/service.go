package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	storesdomain "github.com/hknkuvan/spree/internal/domains/stores/domain"
)

// ErrMissingStore signals a request context without a resolved store.
// That is a wiring bug in the caller, never a degradable condition.
var ErrMissingStore = errors.New("request context has no resolved store")

// RequestContext carries what the web layer resolved for one inbound
// request: the current store plus optional user identity and guest token.
type RequestContext struct {
	Store *storesdomain.Store
	// UserID is set for authenticated requests.
	UserID *int64
	// UserEmail accompanies UserID; blank for guests.
	UserEmail string
	// GuestToken is the verified opaque token from the signed cookie.
	// Blank when the cookie is absent or its signature did not verify.
	GuestToken string
}

// Validate rejects contexts missing the resolved store.
func (rc RequestContext) Validate() error {
	if rc.Store == nil {
		return ErrMissingStore
	}
	return nil
}

// Authenticated reports whether the request carries a user identity.
func (rc RequestContext) Authenticated() bool {
	return rc.UserID != nil
}

// Associator resolves, creates, and reconciles the current order for a
// request context.
type Associator interface {
	// SimpleCurrentOrder finds the open cart for the guest token without
	// creating anything. The empty-order sentinel is a valid outcome.
	SimpleCurrentOrder(ctx context.Context, rctx RequestContext) (*domain.Order, error)
	// CurrentOrder resolves by token, then by user, then creates when
	// asked to; otherwise it returns the empty-order sentinel.
	CurrentOrder(ctx context.Context, rctx RequestContext, createIfNecessary bool) (*domain.Order, error)
	// AssociateUser attaches the authenticated user to a guest cart whose
	// email is still blank. Idempotent.
	AssociateUser(ctx context.Context, rctx RequestContext, order *domain.Order) (*domain.Order, error)
	// SetCurrentOrder merges the user's last other open cart in the same
	// store into the current one. Cross-store and cross-currency carts
	// are left untouched.
	SetCurrentOrder(ctx context.Context, rctx RequestContext, current *domain.Order) (*domain.Order, error)
	// AddLineItem puts a variant into the current cart, creating the cart
	// first when none exists, and reprices any applied promotion.
	AddLineItem(ctx context.Context, rctx RequestContext, variantID int64, quantity int32, unitPrice decimal.Decimal) (*domain.Order, error)
	// ApplyPromotion attaches a named promotion calculator to the current
	// cart and reprices it.
	ApplyPromotion(ctx context.Context, rctx RequestContext, name string) (*domain.Order, error)
	// CurrentCurrency is the current store's default currency. Requires a
	// validated context.
	CurrentCurrency(rctx RequestContext) string
}

// CartMaintenance exposes the durable housekeeping operations.
type CartMaintenance interface {
	// SweepAbandonedCarts purges guest carts untouched for the window.
	SweepAbandonedCarts(ctx context.Context, olderThan time.Duration) (int64, error)
}
