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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
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

func seedStore(code, url string) *domain.Store {
	return &domain.Store{
		Code:              code,
		Name:              "Store " + code,
		URL:               url,
		MailFromAddress:   "orders@example.com",
		DefaultCurrency:   "USD",
		DefaultLocale:     "en",
		DefaultCountryISO: "US",
	}
}

func TestStoresRepository_SaveAssignsDefaultToFirstStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)
	assert.True(t, saved.Persisted())
	assert.True(t, saved.Default)
	assert.False(t, saved.CreatedAt.IsZero())

	// A second store does not steal the flag.
	second, err := repo.Save(ctx, seedStore("beta", "beta.example.com"))
	require.NoError(t, err)
	assert.False(t, second.Default)
}

func TestStoresRepository_SaveDemotesRivalDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)

	promoted := seedStore("beta", "beta.example.com")
	promoted.Default = true
	saved, err := repo.Save(ctx, promoted)
	require.NoError(t, err)
	assert.True(t, saved.Default)

	demoted, err := repo.GetByID(ctx, first.ID, false)
	require.NoError(t, err)
	assert.False(t, demoted.Default)

	current, err := repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, current.ID)
}

func TestStoresRepository_FindByHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	alpha, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, seedStore("beta", "beta.example.com"))
	require.NoError(t, err)

	found, err := repo.FindByHost(ctx, "alpha.example.com")
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, found.ID)

	_, err = repo.FindByHost(ctx, "nothing.shop.io")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStoresRepository_GetByCodeSeesDeletedRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	gone, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, seedStore("beta", "beta.example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, gone.ID))

	// The deleted row still reserves its code.
	reserved, err := repo.GetByCode(ctx, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, gone.ID, reserved.ID)
	assert.True(t, reserved.Deleted())

	_, err = repo.GetByID(ctx, gone.ID, false)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	restored, err := repo.GetByID(ctx, gone.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.Deleted())
}

func TestStoresRepository_DeleteGuardsAndHandsOffDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	oldest, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)

	// Deleting the only store is refused.
	err = repo.Delete(ctx, oldest.ID)
	assert.ErrorIs(t, err, ports.ErrLastStore)

	promoted := seedStore("beta", "beta.example.com")
	promoted.Default = true
	second, err := repo.Save(ctx, promoted)
	require.NoError(t, err)

	// Deleting the default hands the flag to the oldest survivor.
	require.NoError(t, repo.Delete(ctx, second.ID))

	current, err := repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, current.ID)

	err = repo.Delete(ctx, second.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStoresRepository_ListAndCount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.Save(ctx, seedStore("alpha", "alpha.example.com"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, seedStore("beta", "beta.example.com"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, seedStore("gamma", "gamma.example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, first.ID))

	live, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, live, 2)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStoresRepository_RoundTripsArrayColumns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	input := seedStore("alpha", "alpha.example.com")
	input.SupportedCurrencies = []string{"USD", "EUR"}
	input.SupportedLocales = []string{"en", "de"}
	zoneID := int64(7)
	input.CheckoutZoneID = &zoneID

	saved, err := repo.Save(ctx, input)
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, saved.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"USD", "EUR"}, loaded.SupportedCurrencies)
	assert.Equal(t, []string{"en", "de"}, loaded.SupportedLocales)
	assert.Equal(t, zoneID, *loaded.CheckoutZoneID)
}
