package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&storeRecord{},
		&countryRecord{},
		&stateRecord{},
		&zoneRecord{},
		&zoneMemberRecord{},
		&orderRecord{},
		&lineItemRecord{},
	)
}

// Store schema mirrors the stores Postgres adapter.
type storeRecord struct {
	ID                  int64          `gorm:"primaryKey;column:id"`
	Code                string         `gorm:"column:code;uniqueIndex"`
	Name                string         `gorm:"column:name"`
	URL                 string         `gorm:"column:url;index"`
	MailFromAddress     string         `gorm:"column:mail_from_address"`
	DefaultCurrency     string         `gorm:"column:default_currency;type:varchar(3)"`
	DefaultLocale       string         `gorm:"column:default_locale;type:varchar(16)"`
	SupportedCurrencies pq.StringArray `gorm:"column:supported_currencies;type:text[]"`
	SupportedLocales    pq.StringArray `gorm:"column:supported_locales;type:text[]"`
	DefaultCountryISO   string         `gorm:"column:default_country_iso;type:varchar(2)"`
	CheckoutZoneID      *int64         `gorm:"column:checkout_zone_id;index"`
	Default             bool           `gorm:"column:is_default;index"`
	CreatedAt           time.Time      `gorm:"column:created_at;index"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (storeRecord) TableName() string { return "stores" }

// Geography schema mirrors the stores geography adapter.
type countryRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	ISO       string    `gorm:"column:iso;type:varchar(2);uniqueIndex"`
	Name      string    `gorm:"column:name"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	States []stateRecord `gorm:"foreignKey:CountryID"`
}

func (countryRecord) TableName() string { return "countries" }

type stateRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	Name      string `gorm:"column:name"`
	Abbr      string `gorm:"column:abbr;type:varchar(8)"`
	CountryID int64  `gorm:"column:country_id;index"`
}

func (stateRecord) TableName() string { return "states" }

type zoneRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;uniqueIndex"`
	Kind      string    `gorm:"column:kind;type:varchar(16)"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (zoneRecord) TableName() string { return "zones" }

type zoneMemberRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	ZoneID    int64  `gorm:"column:zone_id;index"`
	CountryID *int64 `gorm:"column:country_id"`
	StateID   *int64 `gorm:"column:state_id"`
}

func (zoneMemberRecord) TableName() string { return "zone_members" }

// Order schema mirrors the orders Postgres adapter. The partial unique
// index on (store_id, token) only constrains open carts so completed
// orders keep their token for history.
type orderRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	Number           string          `gorm:"column:number;index"`
	Token            string          `gorm:"column:token;uniqueIndex:udx_orders_store_token,where:state = 'cart'"`
	State            string          `gorm:"column:state;type:varchar(16);index"`
	Email            string          `gorm:"column:email"`
	UserID           *int64          `gorm:"column:user_id;index"`
	StoreID          int64           `gorm:"column:store_id;uniqueIndex:udx_orders_store_token;index"`
	Currency         string          `gorm:"column:currency;type:varchar(3)"`
	AppliedPromotion string          `gorm:"column:applied_promotion"`
	PromoTotal       decimal.Decimal `gorm:"column:promo_total;type:numeric(12,2)"`
	MergedIntoID     *int64          `gorm:"column:merged_into_id"`
	CompletedAt      *time.Time      `gorm:"column:completed_at"`
	CreatedAt        time.Time       `gorm:"column:created_at;index"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type lineItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;index"`
	VariantID int64           `gorm:"column:variant_id;index"`
	Quantity  int32           `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
}

func (lineItemRecord) TableName() string { return "line_items" }
