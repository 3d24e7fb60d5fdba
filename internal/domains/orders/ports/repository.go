package ports

import (
	"context"
	"errors"
	"time"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
)

var (
	// ErrNotFound signals an order lookup miss; callers treat it as the
	// empty-order outcome, not a failure.
	ErrNotFound = errors.New("order not found")
	// ErrTokenConflict signals a concurrent creation collision on the
	// (store, token) incomplete-order constraint. Callers recover with a
	// single re-read-and-retry.
	ErrTokenConflict = errors.New("incomplete order already exists for this store and token")
)

// Repository persists orders. Incomplete orders are unique per
// (store_id, token); the constraint lives in the data store so two
// concurrent requests for one guest token cannot both create a cart.
type Repository interface {
	// Create inserts a new order, returning ErrTokenConflict when an
	// incomplete order already holds the (store, token) pair.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// FindIncompleteByToken locates the open cart for a guest token,
	// scoped to one store. Orders from other stores never match.
	FindIncompleteByToken(ctx context.Context, storeID int64, token string) (*domain.Order, error)
	// FindLatestIncompleteByUser locates the user's most recently touched
	// open cart in the store, skipping excludeOrderID (zero skips nothing).
	FindLatestIncompleteByUser(ctx context.Context, storeID int64, userID int64, excludeOrderID int64) (*domain.Order, error)
	// SaveMerge persists both sides of a merge in one transaction: the
	// absorbing cart and the superseded order marked merged.
	SaveMerge(ctx context.Context, current *domain.Order, superseded *domain.Order) error
	// PurgeAbandonedGuestCarts removes guest carts untouched since the
	// cutoff and reports how many went away.
	PurgeAbandonedGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}
