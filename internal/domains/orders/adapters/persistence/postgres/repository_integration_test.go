//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/orders/ports"
	"github.com/hknkuvan/spree/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("spree_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Run migrations
	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestOrdersRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart := domain.NewCart(1, "USD", nil)
	require.NoError(t, cart.AddItem(100, 2, decimal.NewFromFloat(19.99)))
	require.NoError(t, cart.AddItem(200, 1, decimal.NewFromInt(5)))

	created, err := repo.Create(ctx, cart)
	require.NoError(t, err)
	assert.True(t, created.Persisted())
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.Token, loaded.Token)
	assert.Len(t, loaded.LineItems, 2)
	assert.True(t, loaded.ItemTotal().Equal(decimal.NewFromFloat(44.98)))

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrdersRepository_TokenUniquePerStoreForOpenCarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := domain.NewCart(1, "USD", nil)
	first.Token = "contested"
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)

	// Same token, same store: the partial unique index fires.
	dup := domain.NewCart(1, "USD", nil)
	dup.Token = "contested"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrTokenConflict)

	// Same token in another store is fine.
	otherStore := domain.NewCart(2, "USD", nil)
	otherStore.Token = "contested"
	_, err = repo.Create(ctx, otherStore)
	require.NoError(t, err)

	// Completing the first cart frees the token for a new open cart.
	require.NoError(t, created.Complete(time.Now()))
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	fresh := domain.NewCart(1, "USD", nil)
	fresh.Token = "contested"
	_, err = repo.Create(ctx, fresh)
	require.NoError(t, err)
}

func TestOrdersRepository_FindIncompleteByToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := repo.Create(ctx, domain.NewCart(1, "USD", nil))
	require.NoError(t, err)

	found, err := repo.FindIncompleteByToken(ctx, 1, cart.Token)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)

	// Scoped to the store.
	_, err = repo.FindIncompleteByToken(ctx, 2, cart.Token)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	// Completed orders no longer resolve.
	require.NoError(t, found.Complete(time.Now()))
	_, err = repo.Update(ctx, found)
	require.NoError(t, err)
	_, err = repo.FindIncompleteByToken(ctx, 1, cart.Token)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrdersRepository_FindLatestIncompleteByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	userID := int64(7)

	older, err := repo.Create(ctx, domain.NewCart(1, "USD", &userID))
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	newer, err := repo.Create(ctx, domain.NewCart(1, "USD", &userID))
	require.NoError(t, err)

	latest, err := repo.FindLatestIncompleteByUser(ctx, 1, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	// Excluding the newest surfaces the older cart.
	latest, err = repo.FindLatestIncompleteByUser(ctx, 1, userID, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID)

	_, err = repo.FindLatestIncompleteByUser(ctx, 1, 42, 0)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrdersRepository_UpdateReplacesLineItems(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart := domain.NewCart(1, "USD", nil)
	require.NoError(t, cart.AddItem(100, 1, decimal.NewFromInt(10)))
	created, err := repo.Create(ctx, cart)
	require.NoError(t, err)

	created.LineItems = []domain.LineItem{
		{VariantID: 200, Quantity: 3, UnitPrice: decimal.NewFromInt(4)},
	}
	created.AppliedPromotion = "flat_rate"
	created.PromoTotal = decimal.NewFromInt(5)

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Len(t, updated.LineItems, 1)
	assert.Equal(t, int64(200), updated.LineItems[0].VariantID)
	assert.Equal(t, "flat_rate", updated.AppliedPromotion)
	assert.True(t, updated.PromoTotal.Equal(decimal.NewFromInt(5)))
}

func TestOrdersRepository_SaveMerge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	userID := int64(7)

	stray := domain.NewCart(1, "USD", &userID)
	require.NoError(t, stray.AddItem(100, 2, decimal.NewFromInt(10)))
	stray, err := repo.Create(ctx, stray)
	require.NoError(t, err)

	current := domain.NewCart(1, "USD", &userID)
	require.NoError(t, current.AddItem(200, 1, decimal.NewFromInt(4)))
	current, err = repo.Create(ctx, current)
	require.NoError(t, err)

	require.NoError(t, current.Merge(stray))
	require.NoError(t, repo.SaveMerge(ctx, current, stray))

	loaded, err := repo.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.LineItems, 2)

	superseded, err := repo.GetByID(ctx, stray.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateMerged, superseded.State)
	assert.Equal(t, current.ID, *superseded.MergedIntoID)
}

func TestOrdersRepository_PurgeAbandonedGuestCarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	userID := int64(7)

	stale := domain.NewCart(1, "USD", nil)
	require.NoError(t, stale.AddItem(100, 1, decimal.NewFromInt(10)))
	stale, err := repo.Create(ctx, stale)
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.NewCart(1, "USD", &userID))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(20 * time.Millisecond)

	fresh, err := repo.Create(ctx, domain.NewCart(1, "USD", nil))
	require.NoError(t, err)

	purged, err := repo.PurgeAbandonedGuestCarts(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
}
