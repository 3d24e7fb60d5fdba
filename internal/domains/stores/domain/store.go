package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrNameRequired     = errors.New("store name is required")
	ErrURLRequired      = errors.New("store url is required")
	ErrCodeRequired     = errors.New("store code is required")
	ErrCurrencyRequired = errors.New("store default currency is required")
	ErrCountryRequired  = errors.New("store default country is required")
	ErrMailFromRequired = errors.New("store mail from address is required")
	ErrInvalidMailFrom  = errors.New("store mail from address must be an email")
)

// Store is a tenant/storefront configuration scoping orders and
// currency/locale defaults. Exactly one non-deleted store carries the
// Default flag at any time; the registry enforces that on every write.
type Store struct {
	ID                  int64
	Code                string
	Name                string
	URL                 string
	MailFromAddress     string
	DefaultCurrency     string
	DefaultLocale       string
	SupportedCurrencies []string
	SupportedLocales    []string
	DefaultCountryISO   string
	CheckoutZoneID      *int64
	Default             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// NewDefaultStore returns the transient default store handed to callers
// when no persisted store carries the default flag. It has no identity
// and is never cached; persisting it is the caller's decision.
func NewDefaultStore() *Store {
	return &Store{Default: true}
}

// Persisted reports whether the store has been assigned an identity by
// the repository.
func (s *Store) Persisted() bool {
	return s != nil && s.ID != 0
}

// Deleted reports whether the store is soft-deleted.
func (s *Store) Deleted() bool {
	return s != nil && s.DeletedAt != nil
}

// Normalize trims identifying fields and lowercases the code. Runs ahead
// of validation so uniqueness checks compare canonical values.
func (s *Store) Normalize() {
	s.Code = strings.ToLower(strings.TrimSpace(s.Code))
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)
	s.MailFromAddress = strings.TrimSpace(s.MailFromAddress)
	s.DefaultCurrency = strings.ToUpper(strings.TrimSpace(s.DefaultCurrency))
	s.DefaultLocale = strings.TrimSpace(s.DefaultLocale)
}

// Validate enforces required-field invariants on the aggregate.
func (s *Store) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.URL == "" {
		return ErrURLRequired
	}
	if s.Code == "" {
		return ErrCodeRequired
	}
	if s.MailFromAddress == "" {
		return ErrMailFromRequired
	}
	if !strings.Contains(s.MailFromAddress, "@") {
		return ErrInvalidMailFrom
	}
	if s.DefaultCurrency == "" {
		return ErrCurrencyRequired
	}
	if s.DefaultCountryISO == "" {
		return ErrCountryRequired
	}
	return nil
}

// EnsureSupportedCurrencies seeds the supported currency list with the
// default currency when it is empty.
func (s *Store) EnsureSupportedCurrencies() {
	if len(s.SupportedCurrencies) == 0 && s.DefaultCurrency != "" {
		s.SupportedCurrencies = []string{s.DefaultCurrency}
	}
}

// EnsureSupportedLocales seeds the supported locale list with the default
// locale when it is empty.
func (s *Store) EnsureSupportedLocales() {
	if len(s.SupportedLocales) == 0 && s.DefaultLocale != "" {
		s.SupportedLocales = []string{s.DefaultLocale}
	}
}

// SupportedCurrenciesList returns the stored currencies plus the default
// currency, deduplicated, with the default currency first. Recomputed on
// each call; the aggregate carries no hidden memoized state.
func (s *Store) SupportedCurrenciesList() []string {
	seen := map[string]struct{}{}
	list := make([]string, 0, len(s.SupportedCurrencies)+1)
	add := func(code string) {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		list = append(list, code)
	}
	add(s.DefaultCurrency)
	for _, code := range s.SupportedCurrencies {
		add(code)
	}
	return list
}

// SupportedLocalesList returns the stored locales plus the default
// locale, deduplicated and sorted.
func (s *Store) SupportedLocalesList() []string {
	seen := map[string]struct{}{}
	list := make([]string, 0, len(s.SupportedLocales)+1)
	add := func(locale string) {
		locale = strings.TrimSpace(locale)
		if locale == "" {
			return
		}
		if _, ok := seen[locale]; ok {
			return
		}
		seen[locale] = struct{}{}
		list = append(list, locale)
	}
	for _, locale := range s.SupportedLocales {
		add(locale)
	}
	add(s.DefaultLocale)
	sort.Strings(list)
	return list
}

// SupportsCurrency reports whether the given ISO code is accepted by the
// store.
func (s *Store) SupportsCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, supported := range s.SupportedCurrenciesList() {
		if supported == code {
			return true
		}
	}
	return false
}

// UniqueName renders the store name disambiguated by its code.
func (s *Store) UniqueName() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Code)
}

// FormattedURL returns the store URL with an https scheme prefixed when
// the stored value is a bare host.
func (s *Store) FormattedURL() string {
	if s.URL == "" {
		return ""
	}
	if strings.HasPrefix(s.URL, "http://") || strings.HasPrefix(s.URL, "https://") {
		return s.URL
	}
	return "https://" + s.URL
}

// MatchesHost reports whether the store's URL pattern covers the request
// host. Matching is substring-based in either direction so both
// "shop.example.com" and a stored "example.com" pattern line up.
func (s *Store) MatchesHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	url := strings.ToLower(s.URL)
	if host == "" || url == "" {
		return false
	}
	return strings.Contains(url, host) || strings.Contains(host, url)
}

// FingerprintKey derives a cache key component that changes whenever the
// store row changes, mirroring a version-stamped cache key.
func (s *Store) FingerprintKey() string {
	return fmt.Sprintf("stores/%d-%d", s.ID, s.UpdatedAt.UnixNano())
}
