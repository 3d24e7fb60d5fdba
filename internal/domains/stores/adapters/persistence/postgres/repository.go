package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists stores in PostgreSQL using GORM. Default-flag
// consistency and the last-store guard run inside the write transaction,
// so a reader never observes zero or multiple default stores.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&storeRecord{})
	}
	return repo
}

// storeRecord maps the store aggregate to a relational table. Codes are
// stored lowercase, so the plain unique index is case-insensitive in
// practice; soft-deleted rows keep their codes reserved.
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

// Save inserts or updates a store and reconciles the default flag in the
// same transaction.
func (r *Repository) Save(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	record := toRecord(store)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if record.Default {
			return tx.Model(&storeRecord{}).
				Where("id <> ? AND is_default", record.ID).
				Update("is_default", false).Error
		}
		var defaults int64
		if err := tx.Model(&storeRecord{}).Where("is_default").Count(&defaults).Error; err != nil {
			return err
		}
		if defaults == 0 {
			record.Default = true
			return tx.Model(&storeRecord{}).Where("id = ?", record.ID).Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID, false)
}

// GetByID fetches a store by identifier, optionally reaching soft-deleted rows.
func (r *Repository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record storeRecord
	if err := r.scope(ctx, includeDeleted).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByCode matches codes case-insensitively across soft-deleted rows.
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record storeRecord
	if err := r.scope(ctx, true).First(&record, "lower(code) = lower(?)", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindByHost returns the oldest store whose URL pattern matches the host.
func (r *Repository) FindByHost(ctx context.Context, host string) (*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record storeRecord
	err := r.scope(ctx, false).
		Where("url LIKE ?", "%"+host+"%").
		Order("created_at ASC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindDefault returns the store carrying the default flag.
func (r *Repository) FindDefault(ctx context.Context) (*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record storeRecord
	err := r.scope(ctx, false).
		Where("is_default").
		Order("created_at ASC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns stores ordered by creation time.
func (r *Repository) List(ctx context.Context, includeDeleted bool) ([]*domain.Store, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []storeRecord
	if err := r.scope(ctx, includeDeleted).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	stores := make([]*domain.Store, 0, len(records))
	for i := range records {
		stores = append(stores, records[i].toDomain())
	}
	return stores, nil
}

// Count tallies non-deleted stores.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&storeRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete soft-deletes a store, refusing to remove the last one and
// handing the default flag to the oldest remaining store when needed.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record storeRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		var survivor storeRecord
		err := tx.Where("id <> ?", id).Order("created_at ASC").First(&survivor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrLastStore
		}
		if err != nil {
			return err
		}
		if record.Default {
			if err := tx.Model(&storeRecord{}).Where("id = ?", survivor.ID).Update("is_default", true).Error; err != nil {
				return err
			}
			if err := tx.Model(&storeRecord{}).Where("id = ?", id).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&storeRecord{}, id).Error
	})
}

func (r *Repository) scope(ctx context.Context, includeDeleted bool) *gorm.DB {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		db = db.Unscoped()
	}
	return db
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres store repository not configured")
	}
	return nil
}

func toRecord(store *domain.Store) storeRecord {
	rec := storeRecord{
		ID:                  store.ID,
		Code:                store.Code,
		Name:                store.Name,
		URL:                 store.URL,
		MailFromAddress:     store.MailFromAddress,
		DefaultCurrency:     store.DefaultCurrency,
		DefaultLocale:       store.DefaultLocale,
		SupportedCurrencies: pq.StringArray(store.SupportedCurrencies),
		SupportedLocales:    pq.StringArray(store.SupportedLocales),
		DefaultCountryISO:   store.DefaultCountryISO,
		CheckoutZoneID:      store.CheckoutZoneID,
		Default:             store.Default,
		CreatedAt:           store.CreatedAt,
		UpdatedAt:           store.UpdatedAt,
	}
	if store.DeletedAt != nil {
		rec.DeletedAt = gorm.DeletedAt{Time: *store.DeletedAt, Valid: true}
	}
	return rec
}

func (r storeRecord) toDomain() *domain.Store {
	store := &domain.Store{
		ID:                  r.ID,
		Code:                r.Code,
		Name:                r.Name,
		URL:                 r.URL,
		MailFromAddress:     r.MailFromAddress,
		DefaultCurrency:     r.DefaultCurrency,
		DefaultLocale:       r.DefaultLocale,
		SupportedCurrencies: []string(r.SupportedCurrencies),
		SupportedLocales:    []string(r.SupportedLocales),
		DefaultCountryISO:   r.DefaultCountryISO,
		CheckoutZoneID:      r.CheckoutZoneID,
		Default:             r.Default,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.DeletedAt.Valid {
		deletedAt := r.DeletedAt.Time
		store.DeletedAt = &deletedAt
	}
	return store
}
