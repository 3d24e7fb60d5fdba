package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/orders/ports"
	"github.com/hknkuvan/spree/internal/domains/promotions"
)

// Associator resolves or creates the current order for a request context
// and reconciles an authenticated user's stray carts. All lookups are
// scoped to the context's store; orders from other stores never surface.
type Associator struct {
	orders ports.Repository
	promos *promotions.Environment
	logger *slog.Logger
}

func NewAssociator(orders ports.Repository, promos *promotions.Environment, logger *slog.Logger) *Associator {
	if promos == nil {
		promos = promotions.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Associator{orders: orders, promos: promos, logger: logger}
}

// SimpleCurrentOrder finds the open cart for the guest token without
// side effects. A missing or unmatched token degrades to the empty-order
// sentinel.
func (a *Associator) SimpleCurrentOrder(ctx context.Context, rctx ports.RequestContext) (*domain.Order, error) {
	if err := rctx.Validate(); err != nil {
		return nil, err
	}
	if rctx.GuestToken == "" {
		return a.emptyOrder(rctx), nil
	}
	order, err := a.orders.FindIncompleteByToken(ctx, rctx.Store.ID, rctx.GuestToken)
	if errors.Is(err, ports.ErrNotFound) {
		return a.emptyOrder(rctx), nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CurrentOrder resolves the cart for the request: by guest token first,
// then by authenticated user, then by creating a fresh cart when asked
// to. Anything else yields the empty-order sentinel.
func (a *Associator) CurrentOrder(ctx context.Context, rctx ports.RequestContext, createIfNecessary bool) (*domain.Order, error) {
	if err := rctx.Validate(); err != nil {
		return nil, err
	}
	order, err := a.lookup(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return order, nil
	}
	if !createIfNecessary {
		return a.emptyOrder(rctx), nil
	}
	return a.createCart(ctx, rctx)
}

// AssociateUser attaches the authenticated user to the order when it was
// a guest cart with a blank email. A no-op in every other case.
func (a *Associator) AssociateUser(ctx context.Context, rctx ports.RequestContext, order *domain.Order) (*domain.Order, error) {
	if err := rctx.Validate(); err != nil {
		return nil, err
	}
	if order == nil || !order.Persisted() || !rctx.Authenticated() {
		return order, nil
	}
	if !order.AssociateUser(*rctx.UserID, rctx.UserEmail) {
		return order, nil
	}
	return a.orders.Update(ctx, order)
}

// SetCurrentOrder merges the user's most recently touched other open
// cart in the same store into the current one. Merge conflicts are
// logged and skipped, leaving both orders intact.
func (a *Associator) SetCurrentOrder(ctx context.Context, rctx ports.RequestContext, current *domain.Order) (*domain.Order, error) {
	if err := rctx.Validate(); err != nil {
		return nil, err
	}
	if current == nil || !current.Persisted() || !rctx.Authenticated() {
		return current, nil
	}
	last, err := a.orders.FindLatestIncompleteByUser(ctx, rctx.Store.ID, *rctx.UserID, current.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return current, nil
	}
	if err != nil {
		return nil, err
	}
	if err := mergeError(current.Merge(last)); err != nil {
		if errors.Is(err, ErrMergeConflict) {
			a.logger.Warn("cart merge skipped",
				slog.Int64("order.id", current.ID),
				slog.Int64("other.id", last.ID),
				slog.String("reason", err.Error()))
			return current, nil
		}
		return nil, err
	}
	if err := a.promos.Reconcile(current); err != nil {
		a.logger.Warn("promotion reconcile failed after merge",
			slog.Int64("order.id", current.ID),
			slog.String("error", err.Error()))
	}
	if err := a.orders.SaveMerge(ctx, current, last); err != nil {
		return nil, err
	}
	return current, nil
}

// AddLineItem puts a variant into the current cart, creating the cart
// when none exists, and reprices any applied promotion before saving.
func (a *Associator) AddLineItem(ctx context.Context, rctx ports.RequestContext, variantID int64, quantity int32, unitPrice decimal.Decimal) (*domain.Order, error) {
	order, err := a.CurrentOrder(ctx, rctx, true)
	if err != nil {
		return nil, err
	}
	if err := order.AddItem(variantID, quantity, unitPrice); err != nil {
		return nil, err
	}
	if err := a.promos.Reconcile(order); err != nil {
		return nil, err
	}
	return a.orders.Update(ctx, order)
}

// ApplyPromotion attaches a named calculator to the current cart and
// reprices it. Unknown names surface as promotions.ErrUnknownCalculator.
func (a *Associator) ApplyPromotion(ctx context.Context, rctx ports.RequestContext, name string) (*domain.Order, error) {
	order, err := a.CurrentOrder(ctx, rctx, true)
	if err != nil {
		return nil, err
	}
	if _, err := a.promos.Lookup(name); err != nil {
		return nil, err
	}
	order.AppliedPromotion = name
	if err := a.promos.Reconcile(order); err != nil {
		return nil, err
	}
	return a.orders.Update(ctx, order)
}

// CurrentCurrency returns the current store's default currency.
func (a *Associator) CurrentCurrency(rctx ports.RequestContext) string {
	if rctx.Store == nil {
		return ""
	}
	return rctx.Store.DefaultCurrency
}

// lookup resolves an existing cart by token, then by user. A nil order
// with nil error means nothing matched.
func (a *Associator) lookup(ctx context.Context, rctx ports.RequestContext) (*domain.Order, error) {
	if rctx.GuestToken != "" {
		order, err := a.orders.FindIncompleteByToken(ctx, rctx.Store.ID, rctx.GuestToken)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
	}
	if rctx.Authenticated() {
		order, err := a.orders.FindLatestIncompleteByUser(ctx, rctx.Store.ID, *rctx.UserID, 0)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// createCart inserts a fresh cart. A (store, token) collision means a
// concurrent request won the race, so re-resolve once instead of
// creating a duplicate.
func (a *Associator) createCart(ctx context.Context, rctx ports.RequestContext) (*domain.Order, error) {
	cart := domain.NewCart(rctx.Store.ID, rctx.Store.DefaultCurrency, rctx.UserID)
	if rctx.GuestToken != "" {
		cart.Token = rctx.GuestToken
	}
	created, err := a.orders.Create(ctx, cart)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ports.ErrTokenConflict) {
		return nil, err
	}
	existing, lookupErr := a.orders.FindIncompleteByToken(ctx, rctx.Store.ID, cart.Token)
	if lookupErr != nil {
		return nil, err
	}
	return existing, nil
}

func (a *Associator) emptyOrder(rctx ports.RequestContext) *domain.Order {
	return domain.NewEmptyOrder(rctx.Store.ID, rctx.Store.DefaultCurrency)
}

var _ ports.Associator = (*Associator)(nil)

// Maintenance purges abandoned guest carts through the repository; the
// worker activities and the one-shot sweeper both run on top of it.
type Maintenance struct {
	orders ports.Repository
	now    func() time.Time
}

func NewMaintenance(orders ports.Repository) *Maintenance {
	return &Maintenance{orders: orders, now: time.Now}
}

// SweepAbandonedCarts removes guest carts untouched for the window.
func (m *Maintenance) SweepAbandonedCarts(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("sweep window must be positive")
	}
	return m.orders.PurgeAbandonedGuestCarts(ctx, m.now().Add(-olderThan))
}

var _ ports.CartMaintenance = (*Maintenance)(nil)
