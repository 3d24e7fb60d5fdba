package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

var (
	_ ports.Countries = (*Countries)(nil)
	_ ports.Zones     = (*Zones)(nil)
)

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

// zoneMemberRecord references either a country or a state depending on
// the owning zone's kind.
type zoneMemberRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	ZoneID    int64  `gorm:"column:zone_id;index"`
	CountryID *int64 `gorm:"column:country_id"`
	StateID   *int64 `gorm:"column:state_id"`
}

func (zoneMemberRecord) TableName() string { return "zone_members" }

// Countries reads country reference data from PostgreSQL.
type Countries struct {
	db *gorm.DB
}

func NewCountries(db *gorm.DB) *Countries {
	c := &Countries{db: db}
	if db != nil {
		_ = db.AutoMigrate(&countryRecord{}, &stateRecord{})
	}
	return c
}

func (c *Countries) ByISO(ctx context.Context, iso string) (*domain.Country, error) {
	if c == nil || c.db == nil {
		return nil, errors.New("postgres countries adapter not configured")
	}
	var record countryRecord
	err := c.db.WithContext(ctx).Preload("States").First(&record, "upper(iso) = upper(?)", iso).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (c *Countries) First(ctx context.Context) (*domain.Country, error) {
	if c == nil || c.db == nil {
		return nil, errors.New("postgres countries adapter not configured")
	}
	var record countryRecord
	err := c.db.WithContext(ctx).Preload("States").Order("id ASC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (c *Countries) All(ctx context.Context) ([]domain.Country, error) {
	if c == nil || c.db == nil {
		return nil, errors.New("postgres countries adapter not configured")
	}
	var records []countryRecord
	if err := c.db.WithContext(ctx).Preload("States").Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	countries := make([]domain.Country, 0, len(records))
	for i := range records {
		countries = append(countries, *records[i].toDomain())
	}
	return countries, nil
}

// Zones resolves checkout zones and their member geography from PostgreSQL.
type Zones struct {
	db *gorm.DB
}

func NewZones(db *gorm.DB) *Zones {
	z := &Zones{db: db}
	if db != nil {
		_ = db.AutoMigrate(&zoneRecord{}, &zoneMemberRecord{})
	}
	return z
}

func (z *Zones) ByID(ctx context.Context, id int64) (*domain.Zone, error) {
	if z == nil || z.db == nil {
		return nil, errors.New("postgres zones adapter not configured")
	}
	var record zoneRecord
	if err := z.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.Zone{
		ID:        record.ID,
		Name:      record.Name,
		Kind:      domain.ZoneKind(record.Kind),
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// CountryList resolves a zone's countries. State-kind zones resolve to
// the countries owning their member states.
func (z *Zones) CountryList(ctx context.Context, zoneID int64) ([]domain.Country, error) {
	if z == nil || z.db == nil {
		return nil, errors.New("postgres zones adapter not configured")
	}
	var records []countryRecord
	err := z.db.WithContext(ctx).Preload("States").
		Where(`id IN (
			SELECT country_id FROM zone_members WHERE zone_id = ? AND country_id IS NOT NULL
			UNION
			SELECT states.country_id FROM zone_members
			JOIN states ON states.id = zone_members.state_id
			WHERE zone_members.zone_id = ?
		)`, zoneID, zoneID).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	countries := make([]domain.Country, 0, len(records))
	for i := range records {
		countries = append(countries, *records[i].toDomain())
	}
	return countries, nil
}

// StateListFor resolves the member states of one country within a zone.
func (z *Zones) StateListFor(ctx context.Context, zoneID int64, countryID int64) ([]domain.State, error) {
	if z == nil || z.db == nil {
		return nil, errors.New("postgres zones adapter not configured")
	}
	var records []stateRecord
	err := z.db.WithContext(ctx).
		Where(`country_id = ? AND id IN (
			SELECT state_id FROM zone_members WHERE zone_id = ? AND state_id IS NOT NULL
		)`, countryID, zoneID).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	states := make([]domain.State, 0, len(records))
	for _, record := range records {
		states = append(states, domain.State{
			ID:        record.ID,
			Name:      record.Name,
			Abbr:      record.Abbr,
			CountryID: record.CountryID,
		})
	}
	return states, nil
}

func (r countryRecord) toDomain() *domain.Country {
	country := &domain.Country{
		ID:        r.ID,
		ISO:       r.ISO,
		Name:      r.Name,
		UpdatedAt: r.UpdatedAt,
	}
	for _, state := range r.States {
		country.States = append(country.States, domain.State{
			ID:        state.ID,
			Name:      state.Name,
			Abbr:      state.Abbr,
			CountryID: state.CountryID,
		})
	}
	return country
}
