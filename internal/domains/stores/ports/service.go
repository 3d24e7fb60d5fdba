package ports

import (
	"context"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
)

// Registry exposes store resolution and lifecycle use cases to adapters.
type Registry interface {
	// Resolve finds the store whose URL matches the request host, falling
	// back to the default store. It never fails for an unknown host.
	Resolve(ctx context.Context, host string) (*domain.Store, error)
	// Default returns the cached default store. When no persisted store
	// carries the flag it returns an unsaved transient default; the
	// transient is never cached and persisting it is the caller's call.
	Default(ctx context.Context) (*domain.Store, error)
	Save(ctx context.Context, store *domain.Store) (*domain.Store, error)
	Delete(ctx context.Context, id int64) error
	CanBeDeleted(ctx context.Context, store *domain.Store) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Store, error)
	CountriesAvailableForCheckout(ctx context.Context, store *domain.Store) ([]domain.Country, error)
	StatesAvailableForCheckout(ctx context.Context, store *domain.Store, countryISO string) ([]domain.State, error)
	// AvailableLocales unions the supported locale lists of every store.
	AvailableLocales(ctx context.Context) ([]string, error)
}
