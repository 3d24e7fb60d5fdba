package ports

import (
	"context"
	"errors"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
)

var (
	// ErrNotFound signals a store lookup miss. Callers treat it as a soft
	// outcome, not a failure.
	ErrNotFound = errors.New("store not found")
	// ErrLastStore signals an attempt to delete the only remaining store.
	ErrLastStore = errors.New("cannot delete the only remaining store")
	// ErrCodeTaken signals a case-insensitive code collision, soft-deleted
	// rows included.
	ErrCodeTaken = errors.New("store code already taken")
)

// Repository persists stores. Save and Delete run their consistency work
// (default-flag handoff, last-store guard) inside the same transaction as
// the write so no reader observes zero or multiple default stores.
type Repository interface {
	// Save inserts or updates a store. When the store carries the default
	// flag the flag is cleared on every other store; when no store would
	// carry it after the write, the saved store is promoted.
	Save(ctx context.Context, store *domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Store, error)
	// GetByCode matches case-insensitively and searches soft-deleted rows
	// too: a deleted store keeps its code reserved.
	GetByCode(ctx context.Context, code string) (*domain.Store, error)
	// FindByHost returns the first store whose URL pattern matches host.
	FindByHost(ctx context.Context, host string) (*domain.Store, error)
	FindDefault(ctx context.Context) (*domain.Store, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Store, error)
	// Count tallies non-deleted stores.
	Count(ctx context.Context) (int64, error)
	// Delete soft-deletes a store. It fails with ErrLastStore when no other
	// store remains, and hands the default flag to the oldest remaining
	// store when the deleted one carried it.
	Delete(ctx context.Context, id int64) error
}

// Countries reads the country reference data used by checkout geography
// and default-country resolution.
type Countries interface {
	ByISO(ctx context.Context, iso string) (*domain.Country, error)
	First(ctx context.Context) (*domain.Country, error)
	All(ctx context.Context) ([]domain.Country, error)
}

// Zones resolves checkout zones and their member geography.
type Zones interface {
	ByID(ctx context.Context, id int64) (*domain.Zone, error)
	// CountryList resolves the countries a zone covers. State-kind zones
	// resolve to the countries owning their member states.
	CountryList(ctx context.Context, zoneID int64) ([]domain.Country, error)
	// StateListFor resolves the states of one country covered by a zone.
	StateListFor(ctx context.Context, zoneID int64, countryID int64) ([]domain.State, error)
}
