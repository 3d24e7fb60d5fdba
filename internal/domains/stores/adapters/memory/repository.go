package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory store persistence adapter. The mutex stands
// in for the database transaction: default-flag consistency and the
// last-store guard run under the same lock as the write.
type Repository struct {
	mu     sync.Mutex
	stores map[int64]*domain.Store
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{stores: map[int64]*domain.Store{}, now: time.Now}
}

func (r *Repository) Save(_ context.Context, store *domain.Store) (*domain.Store, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *store
	now := r.now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now

	if clone.Default {
		for id, other := range r.stores {
			if id != clone.ID && other.Default {
				other.Default = false
				other.UpdatedAt = now
			}
		}
	} else if !r.anyDefaultLocked(clone.ID) {
		clone.Default = true
	}

	r.stores[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64, includeDeleted bool) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[id]
	if !ok || (!includeDeleted && store.Deleted()) {
		return nil, ports.ErrNotFound
	}
	clone := *store
	return &clone, nil
}

func (r *Repository) GetByCode(_ context.Context, code string) (*domain.Store, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, store := range r.stores {
		if strings.ToLower(store.Code) == code {
			clone := *store
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) FindByHost(_ context.Context, host string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, store := range r.sortedLocked() {
		if store.Deleted() {
			continue
		}
		if store.MatchesHost(host) {
			clone := *store
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) FindDefault(_ context.Context) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, store := range r.sortedLocked() {
		if !store.Deleted() && store.Default {
			clone := *store
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) List(_ context.Context, includeDeleted bool) ([]*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.Store
	for _, store := range r.sortedLocked() {
		if !includeDeleted && store.Deleted() {
			continue
		}
		clone := *store
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, store := range r.stores {
		if !store.Deleted() {
			count++
		}
	}
	return count, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[id]
	if !ok || store.Deleted() {
		return ports.ErrNotFound
	}

	var remaining []*domain.Store
	for _, other := range r.sortedLocked() {
		if other.ID != id && !other.Deleted() {
			remaining = append(remaining, other)
		}
	}
	if len(remaining) == 0 {
		return ports.ErrLastStore
	}
	now := r.now()
	if store.Default {
		remaining[0].Default = true
		remaining[0].UpdatedAt = now
		store.Default = false
	}
	deletedAt := now
	store.DeletedAt = &deletedAt
	store.UpdatedAt = now
	return nil
}

func (r *Repository) anyDefaultLocked(excludeID int64) bool {
	for id, store := range r.stores {
		if id != excludeID && !store.Deleted() && store.Default {
			return true
		}
	}
	return false
}

// sortedLocked returns stores ordered by creation so "first" is stable,
// matching the created-at ordering of the relational adapter.
func (r *Repository) sortedLocked() []*domain.Store {
	list := make([]*domain.Store, 0, len(r.stores))
	for _, store := range r.stores {
		list = append(list, store)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}
