package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
	"github.com/hknkuvan/spree/internal/platform/cache"
)

// Registry resolves the current store for a request host and maintains
// the global invariants over the store set: exactly one default store,
// unique codes, cached default lookup, and checkout geography.
type Registry struct {
	stores    ports.Repository
	countries ports.Countries
	zones     ports.Zones
	cache     *cache.Cache
}

func NewRegistry(stores ports.Repository, countries ports.Countries, zones ports.Zones, c *cache.Cache) *Registry {
	if c == nil {
		c = cache.New(0)
	}
	return &Registry{stores: stores, countries: countries, zones: zones, cache: c}
}

// Resolve finds the store serving the given request host. An unmatched
// or empty host falls back to the default store rather than failing.
func (r *Registry) Resolve(ctx context.Context, host string) (*domain.Store, error) {
	if host != "" {
		store, err := r.stores.FindByHost(ctx, host)
		if err == nil {
			return store, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
	}
	return r.Default(ctx)
}

// Default returns the default store, served from the process-wide cache
// when warm. When no persisted store carries the flag, a transient
// unsaved default is returned instead of an error; the transient is
// never cached so a later Save shows up on the next call.
func (r *Registry) Default(ctx context.Context) (*domain.Store, error) {
	if cached, ok := r.cache.Get(cache.DefaultStoreKey); ok {
		if store, ok := cached.(*domain.Store); ok {
			return store, nil
		}
	}
	store, err := r.stores.FindDefault(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.NewDefaultStore(), nil
	}
	if err != nil {
		return nil, err
	}
	r.cache.Set(cache.DefaultStoreKey, store)
	return store, nil
}

// saveStep is one named stage of the save pipeline. A step either
// normalizes the candidate or vetoes the save with a domain error.
type saveStep struct {
	name string
	run  func(ctx context.Context, store *domain.Store) error
}

func (r *Registry) savePipeline() []saveStep {
	return []saveStep{
		{name: "normalize", run: func(_ context.Context, s *domain.Store) error {
			s.Normalize()
			return nil
		}},
		{name: "ensure_default_country", run: r.ensureDefaultCountry},
		{name: "validate", run: func(_ context.Context, s *domain.Store) error {
			return s.Validate()
		}},
		{name: "ensure_code_unique", run: r.ensureCodeUnique},
		{name: "ensure_supported_currencies", run: func(_ context.Context, s *domain.Store) error {
			s.EnsureSupportedCurrencies()
			return nil
		}},
		{name: "ensure_supported_locales", run: func(_ context.Context, s *domain.Store) error {
			s.EnsureSupportedLocales()
			return nil
		}},
	}
}

// Save runs the validation pipeline and persists the store. The
// repository enforces default-flag consistency inside the write
// transaction; the cached default entry is dropped after the commit.
func (r *Registry) Save(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	for _, step := range r.savePipeline() {
		if err := step.run(ctx, store); err != nil {
			return nil, fmt.Errorf("save step %s: %w", step.name, mapError(err))
		}
	}
	saved, err := r.stores.Save(ctx, store)
	if err != nil {
		return nil, mapError(err)
	}
	r.cache.Delete(cache.DefaultStoreKey)
	return saved, nil
}

// Delete soft-deletes a store. Deleting the last remaining store is a
// domain error; deleting the default store hands the flag to another
// store before the row goes away.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	if err := r.stores.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	r.cache.Delete(cache.DefaultStoreKey)
	return nil
}

// CanBeDeleted reports whether at least one other store would remain.
func (r *Registry) CanBeDeleted(ctx context.Context, store *domain.Store) (bool, error) {
	count, err := r.stores.Count(ctx)
	if err != nil {
		return false, err
	}
	if store.Persisted() {
		return count > 1, nil
	}
	return count > 0, nil
}

// GetByID fetches a non-deleted store by identifier.
func (r *Registry) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	return r.stores.GetByID(ctx, id, false)
}

// List returns stores, optionally with soft-deleted rows. The flag is
// explicit so query semantics stay auditable at every call site.
func (r *Registry) List(ctx context.Context, includeDeleted bool) ([]*domain.Store, error) {
	return r.stores.List(ctx, includeDeleted)
}

// CountriesAvailableForCheckout resolves the checkout country list from
// the store's zone, or the full country list when unrestricted. Results
// are cached under a fingerprint key so an edit to the store or its zone
// rolls the key without explicit invalidation.
func (r *Registry) CountriesAvailableForCheckout(ctx context.Context, store *domain.Store) ([]domain.Country, error) {
	zone, err := r.checkoutZone(ctx, store)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s/countries_available_for_checkout", store.FingerprintKey(), zone.FingerprintKey())
	value, err := r.cache.Fetch(key, func() (any, error) {
		if zone != nil {
			countries, err := r.zones.CountryList(ctx, zone.ID)
			if err != nil {
				return nil, err
			}
			if len(countries) > 0 {
				return countries, nil
			}
		}
		return r.countries.All(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.Country), nil
}

// StatesAvailableForCheckout resolves the state list for one country,
// zone-restricted when the store has a state-kind checkout zone.
func (r *Registry) StatesAvailableForCheckout(ctx context.Context, store *domain.Store, countryISO string) ([]domain.State, error) {
	country, err := r.countries.ByISO(ctx, countryISO)
	if err != nil {
		return nil, err
	}
	zone, err := r.checkoutZone(ctx, store)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s/states_available_for_checkout/%s", store.FingerprintKey(), zone.FingerprintKey(), country.ISO)
	value, err := r.cache.Fetch(key, func() (any, error) {
		if zone != nil && zone.Kind == domain.ZoneKindState {
			return r.zones.StateListFor(ctx, zone.ID, country.ID)
		}
		return country.States, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.State), nil
}

// AvailableLocales unions the supported locale lists across all stores.
func (r *Registry) AvailableLocales(ctx context.Context) ([]string, error) {
	stores, err := r.stores.List(ctx, false)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var locales []string
	for _, store := range stores {
		for _, locale := range store.SupportedLocalesList() {
			if _, ok := seen[locale]; ok {
				continue
			}
			seen[locale] = struct{}{}
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)
	return locales, nil
}

// ensureDefaultCountry recomputes the default country when it is absent
// or excluded by the checkout zone: zone's first country, then the fixed
// fallback, then any country at all.
func (r *Registry) ensureDefaultCountry(ctx context.Context, store *domain.Store) error {
	zone, err := r.checkoutZone(ctx, store)
	if err != nil {
		return err
	}
	var zoneCountries []domain.Country
	if zone != nil {
		zoneCountries, err = r.zones.CountryList(ctx, zone.ID)
		if err != nil {
			return err
		}
	}
	if store.DefaultCountryISO != "" {
		if len(zoneCountries) == 0 || domain.ContainsCountry(zoneCountries, store.DefaultCountryISO) {
			return nil
		}
	}
	if len(zoneCountries) > 0 {
		store.DefaultCountryISO = zoneCountries[0].ISO
		return nil
	}
	if fallback, err := r.countries.ByISO(ctx, domain.FallbackCountryISO); err == nil {
		store.DefaultCountryISO = fallback.ISO
		return nil
	}
	first, err := r.countries.First(ctx)
	if err != nil {
		return err
	}
	store.DefaultCountryISO = first.ISO
	return nil
}

// ensureCodeUnique rejects a code already held by another store,
// case-insensitively and soft-deleted rows included.
func (r *Registry) ensureCodeUnique(ctx context.Context, store *domain.Store) error {
	existing, err := r.stores.GetByCode(ctx, store.Code)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != store.ID {
		return ports.ErrCodeTaken
	}
	return nil
}

func (r *Registry) checkoutZone(ctx context.Context, store *domain.Store) (*domain.Zone, error) {
	if store.CheckoutZoneID == nil {
		return nil, nil
	}
	return r.zones.ByID(ctx, *store.CheckoutZoneID)
}

var _ ports.Registry = (*Registry)(nil)
