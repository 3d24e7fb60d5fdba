package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

var (
	_ ports.Countries = (*Countries)(nil)
	_ ports.Zones     = (*Zones)(nil)
)

// Countries serves country reference data from memory.
type Countries struct {
	mu   sync.RWMutex
	list []domain.Country
}

// NewCountries builds the read-side country adapter. Order is preserved;
// First returns the country seeded first.
func NewCountries(countries ...domain.Country) *Countries {
	return &Countries{list: countries}
}

func (c *Countries) ByISO(_ context.Context, iso string) (*domain.Country, error) {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.list {
		if c.list[i].ISO == iso {
			clone := c.list[i]
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (c *Countries) First(_ context.Context) (*domain.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.list) == 0 {
		return nil, ports.ErrNotFound
	}
	clone := c.list[0]
	return &clone, nil
}

func (c *Countries) All(_ context.Context) ([]domain.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Country(nil), c.list...), nil
}

// ZoneData couples a zone with its resolved member geography.
type ZoneData struct {
	Zone      domain.Zone
	Countries []domain.Country
	// States holds state members keyed by country ID, for state-kind zones.
	States map[int64][]domain.State
}

// Zones serves checkout zones from memory.
type Zones struct {
	mu    sync.RWMutex
	zones map[int64]ZoneData
}

func NewZones(zones ...ZoneData) *Zones {
	byID := map[int64]ZoneData{}
	for _, z := range zones {
		byID[z.Zone.ID] = z
	}
	return &Zones{zones: byID}
}

func (z *Zones) ByID(_ context.Context, id int64) (*domain.Zone, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	data, ok := z.zones[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := data.Zone
	return &clone, nil
}

func (z *Zones) CountryList(_ context.Context, zoneID int64) ([]domain.Country, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	data, ok := z.zones[zoneID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]domain.Country(nil), data.Countries...), nil
}

func (z *Zones) StateListFor(_ context.Context, zoneID int64, countryID int64) ([]domain.State, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	data, ok := z.zones[zoneID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]domain.State(nil), data.States[countryID]...), nil
}
