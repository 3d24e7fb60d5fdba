package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. The partial
// unique index on (store_id, token) for open carts backs the
// concurrent-creation guarantee; its violation surfaces as
// ports.ErrTokenConflict.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &lineItemRecord{})
	}
	return repo
}

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

	LineItems []lineItemRecord `gorm:"foreignKey:OrderID"`
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

// Create inserts a new order with its line items.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrTokenConflict
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update rewrites an order and replaces its line item set.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil || order.ID == 0 {
		return nil, errors.New("order has no identity")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOrder(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches an order with its line items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).Preload("LineItems").First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindIncompleteByToken locates the open cart for a guest token within one store.
func (r *Repository) FindIncompleteByToken(ctx context.Context, storeID int64, token string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ports.ErrNotFound
	}
	var record orderRecord
	err := r.db.WithContext(ctx).Preload("LineItems").
		Where("store_id = ? AND token = ? AND state = ?", storeID, token, string(domain.StateCart)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindLatestIncompleteByUser locates the user's most recently touched
// open cart in the store, skipping excludeOrderID.
func (r *Repository) FindLatestIncompleteByUser(ctx context.Context, storeID int64, userID int64, excludeOrderID int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Preload("LineItems").
		Where("store_id = ? AND user_id = ? AND state = ?", storeID, userID, string(domain.StateCart))
	if excludeOrderID != 0 {
		query = query.Where("id <> ?", excludeOrderID)
	}
	var record orderRecord
	if err := query.Order("updated_at DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// SaveMerge persists the absorbing cart and the superseded order in one
// transaction so no reader sees a half-applied merge.
func (r *Repository) SaveMerge(ctx context.Context, current *domain.Order, superseded *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if current == nil || superseded == nil {
		return errors.New("merge requires both orders")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveOrder(tx, current); err != nil {
			return err
		}
		return saveOrder(tx, superseded)
	})
}

// PurgeAbandonedGuestCarts deletes guest carts untouched since cutoff.
func (r *Repository) PurgeAbandonedGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		err := tx.Model(&orderRecord{}).
			Where("state = ? AND user_id IS NULL AND updated_at < ?", string(domain.StateCart), cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("order_id IN ?", ids).Delete(&lineItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&orderRecord{})
		purged = result.RowsAffected
		return result.Error
	})
	return purged, err
}

// saveOrder rewrites an order row and replaces its line items inside the
// caller's transaction.
func saveOrder(tx *gorm.DB, order *domain.Order) error {
	record := toRecord(order)
	items := record.LineItems
	record.LineItems = nil
	if err := tx.Omit("LineItems").Save(&record).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", record.ID).Delete(&lineItemRecord{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = record.ID
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:               order.ID,
		Number:           order.Number,
		Token:            order.Token,
		State:            string(order.State),
		Email:            order.Email,
		UserID:           order.UserID,
		StoreID:          order.StoreID,
		Currency:         order.Currency,
		AppliedPromotion: order.AppliedPromotion,
		PromoTotal:       order.PromoTotal,
		MergedIntoID:     order.MergedIntoID,
		CompletedAt:      order.CompletedAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, item := range order.LineItems {
		record.LineItems = append(record.LineItems, lineItemRecord{
			ID:        item.ID,
			OrderID:   order.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return record
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:               r.ID,
		Number:           r.Number,
		Token:            r.Token,
		State:            domain.State(r.State),
		Email:            r.Email,
		UserID:           r.UserID,
		StoreID:          r.StoreID,
		Currency:         r.Currency,
		AppliedPromotion: r.AppliedPromotion,
		PromoTotal:       r.PromoTotal,
		MergedIntoID:     r.MergedIntoID,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, item := range r.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}
