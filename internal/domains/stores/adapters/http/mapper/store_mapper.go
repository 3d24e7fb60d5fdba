package mapper

import (
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
)

// Store is the HTTP representation of a storefront configuration.
type Store struct {
	ID                  int64       `json:"id,omitempty"`
	Code                string      `json:"code"`
	Name                string      `json:"name"`
	URL                 string      `json:"url"`
	MailFromAddress     types.Email `json:"mailFromAddress"`
	DefaultCurrency     string      `json:"defaultCurrency"`
	DefaultLocale       string      `json:"defaultLocale,omitempty"`
	SupportedCurrencies []string    `json:"supportedCurrencies"`
	SupportedLocales    []string    `json:"supportedLocales"`
	DefaultCountryISO   string      `json:"defaultCountryIso,omitempty"`
	CheckoutZoneID      *int64      `json:"checkoutZoneId,omitempty"`
	Default             bool        `json:"default"`
	CreatedAt           time.Time   `json:"createdAt,omitempty"`
	UpdatedAt           time.Time   `json:"updatedAt,omitempty"`
}

// MutationStore captures inbound payloads for create/update flows while preserving field presence.
type MutationStore struct {
	ID                  int64        `json:"id,omitempty"`
	Code                *string      `json:"code,omitempty"`
	Name                *string      `json:"name,omitempty"`
	URL                 *string      `json:"url,omitempty"`
	MailFromAddress     *types.Email `json:"mailFromAddress,omitempty"`
	DefaultCurrency     *string      `json:"defaultCurrency,omitempty"`
	DefaultLocale       *string      `json:"defaultLocale,omitempty"`
	SupportedCurrencies *[]string    `json:"supportedCurrencies,omitempty"`
	SupportedLocales    *[]string    `json:"supportedLocales,omitempty"`
	DefaultCountryISO   *string      `json:"defaultCountryIso,omitempty"`
	CheckoutZoneID      *int64       `json:"checkoutZoneId,omitempty"`
	Default             *bool        `json:"default,omitempty"`
}

// Country is the HTTP representation of a checkout country.
type Country struct {
	ID   int64  `json:"id,omitempty"`
	ISO  string `json:"iso"`
	Name string `json:"name"`
}

// State is the HTTP representation of a checkout subdivision.
type State struct {
	ID        int64  `json:"id,omitempty"`
	Abbr      string `json:"abbr,omitempty"`
	Name      string `json:"name"`
	CountryID int64  `json:"countryId,omitempty"`
}

// ApplyMutation layers a mutation payload onto a domain store, leaving
// absent fields untouched.
func ApplyMutation(store *domain.Store, input MutationStore) *domain.Store {
	if store == nil {
		store = &domain.Store{ID: input.ID}
	}
	if input.Code != nil {
		store.Code = *input.Code
	}
	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.URL != nil {
		store.URL = *input.URL
	}
	if input.MailFromAddress != nil {
		store.MailFromAddress = string(*input.MailFromAddress)
	}
	if input.DefaultCurrency != nil {
		store.DefaultCurrency = *input.DefaultCurrency
	}
	if input.DefaultLocale != nil {
		store.DefaultLocale = *input.DefaultLocale
	}
	if input.SupportedCurrencies != nil {
		store.SupportedCurrencies = append([]string{}, (*input.SupportedCurrencies)...)
	}
	if input.SupportedLocales != nil {
		store.SupportedLocales = append([]string{}, (*input.SupportedLocales)...)
	}
	if input.DefaultCountryISO != nil {
		store.DefaultCountryISO = *input.DefaultCountryISO
	}
	if input.CheckoutZoneID != nil {
		id := *input.CheckoutZoneID
		store.CheckoutZoneID = &id
	}
	if input.Default != nil {
		store.Default = *input.Default
	}
	return store
}

// FromDomainStore maps a domain aggregate into a transport Store.
func FromDomainStore(s *domain.Store) Store {
	var zoneID *int64
	if s.CheckoutZoneID != nil {
		id := *s.CheckoutZoneID
		zoneID = &id
	}
	return Store{
		ID:                  s.ID,
		Code:                s.Code,
		Name:                s.Name,
		URL:                 s.URL,
		MailFromAddress:     types.Email(s.MailFromAddress),
		DefaultCurrency:     s.DefaultCurrency,
		DefaultLocale:       s.DefaultLocale,
		SupportedCurrencies: s.SupportedCurrenciesList(),
		SupportedLocales:    s.SupportedLocalesList(),
		DefaultCountryISO:   s.DefaultCountryISO,
		CheckoutZoneID:      zoneID,
		Default:             s.Default,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// FromDomainStoreList maps a slice of stores, never returning nil.
func FromDomainStoreList(stores []*domain.Store) []Store {
	out := make([]Store, 0, len(stores))
	for _, s := range stores {
		out = append(out, FromDomainStore(s))
	}
	return out
}

// FromDomainCountry maps a checkout country to its transport shape.
func FromDomainCountry(c domain.Country) Country {
	return Country{ID: c.ID, ISO: c.ISO, Name: c.Name}
}

// FromDomainCountryList maps a slice of countries, never returning nil.
func FromDomainCountryList(countries []domain.Country) []Country {
	out := make([]Country, 0, len(countries))
	for _, c := range countries {
		out = append(out, FromDomainCountry(c))
	}
	return out
}

// FromDomainStateList maps a slice of states, never returning nil.
func FromDomainStateList(states []domain.State) []State {
	out := make([]State, 0, len(states))
	for _, s := range states {
		out = append(out, State{ID: s.ID, Abbr: s.Abbr, Name: s.Name, CountryID: s.CountryID})
	}
	return out
}
