package domain

import (
	"fmt"
	"time"
)

// FallbackCountryISO is promoted as the default country when neither the
// checkout zone nor the current value yields one.
const FallbackCountryISO = "US"

// State is a subdivision of a country available for checkout addresses.
type State struct {
	ID        int64
	Name      string
	Abbr      string
	CountryID int64
}

// Country is a shippable country with its subdivision list.
type Country struct {
	ID        int64
	ISO       string
	Name      string
	States    []State
	UpdatedAt time.Time
}

// ZoneKind discriminates what a zone's members reference.
type ZoneKind string

const (
	ZoneKindCountry ZoneKind = "country"
	ZoneKindState   ZoneKind = "state"
)

// Zone is an optional geographic restriction applied to a store's
// checkout. Member resolution happens through the zones port; the
// aggregate only carries identity and versioning.
type Zone struct {
	ID        int64
	Name      string
	Kind      ZoneKind
	UpdatedAt time.Time
}

// FingerprintKey derives a cache key component versioned by the zone row.
func (z *Zone) FingerprintKey() string {
	if z == nil {
		return "zones/none"
	}
	return fmt.Sprintf("zones/%d-%d", z.ID, z.UpdatedAt.UnixNano())
}

// ContainsCountry reports whether iso appears in the resolved country
// list. An empty list restricts nothing.
func ContainsCountry(countries []Country, iso string) bool {
	for _, country := range countries {
		if country.ISO == iso {
			return true
		}
	}
	return false
}
