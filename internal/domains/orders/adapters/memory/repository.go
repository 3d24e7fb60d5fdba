package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. The mutex plays
// the role of the database transaction, including the unique
// (store, token) constraint for incomplete orders.
type Repository struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, now: time.Now}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.Token != "" {
		for _, existing := range r.orders {
			if existing.IsCart() && existing.StoreID == order.StoreID && existing.Token == order.Token {
				return nil, ports.ErrTokenConflict
			}
		}
	}
	clone := cloneOrder(order)
	r.nextID++
	clone.ID = r.nextID
	now := r.now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil || order.ID == 0 {
		return nil, errors.New("order has no identity")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneOrder(order)
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = r.now()
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) FindIncompleteByToken(_ context.Context, storeID int64, token string) (*domain.Order, error) {
	if token == "" {
		return nil, ports.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.IsCart() && order.StoreID == storeID && order.Token == token {
			return cloneOrder(order), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) FindLatestIncompleteByUser(_ context.Context, storeID int64, userID int64, excludeOrderID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Order
	for _, order := range r.orders {
		if !order.IsCart() || order.StoreID != storeID || order.ID == excludeOrderID {
			continue
		}
		if order.UserID == nil || *order.UserID != userID {
			continue
		}
		if latest == nil || order.UpdatedAt.After(latest.UpdatedAt) {
			latest = order
		}
	}
	if latest == nil {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(latest), nil
}

func (r *Repository) SaveMerge(_ context.Context, current *domain.Order, superseded *domain.Order) error {
	if current == nil || superseded == nil {
		return errors.New("merge requires both orders")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[current.ID]; !ok {
		return ports.ErrNotFound
	}
	if _, ok := r.orders[superseded.ID]; !ok {
		return ports.ErrNotFound
	}
	now := r.now()
	currentClone := cloneOrder(current)
	currentClone.UpdatedAt = now
	supersededClone := cloneOrder(superseded)
	supersededClone.UpdatedAt = now
	r.orders[currentClone.ID] = currentClone
	r.orders[supersededClone.ID] = supersededClone
	return nil
}

func (r *Repository) PurgeAbandonedGuestCarts(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, order := range r.orders {
		if order.IsCart() && order.UserID == nil && order.UpdatedAt.Before(cutoff) {
			delete(r.orders, id)
			purged++
		}
	}
	return purged, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.LineItems = append([]domain.LineItem(nil), order.LineItems...)
	return &clone
}
