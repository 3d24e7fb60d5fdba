package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersmemory "github.com/hknkuvan/spree/internal/domains/orders/adapters/memory"
	ordersobs "github.com/hknkuvan/spree/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/hknkuvan/spree/internal/domains/orders/adapters/persistence/postgres"
	"github.com/hknkuvan/spree/internal/domains/orders/adapters/token"
	ordersworkflows "github.com/hknkuvan/spree/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/hknkuvan/spree/internal/domains/orders/application"
	ordersports "github.com/hknkuvan/spree/internal/domains/orders/ports"
	"github.com/hknkuvan/spree/internal/domains/promotions"
	storesmemory "github.com/hknkuvan/spree/internal/domains/stores/adapters/memory"
	storesobs "github.com/hknkuvan/spree/internal/domains/stores/adapters/observability"
	storespostgres "github.com/hknkuvan/spree/internal/domains/stores/adapters/persistence/postgres"
	storesapp "github.com/hknkuvan/spree/internal/domains/stores/application"
	storesdomain "github.com/hknkuvan/spree/internal/domains/stores/domain"
	storesports "github.com/hknkuvan/spree/internal/domains/stores/ports"
	"github.com/hknkuvan/spree/internal/platform/cache"
	"github.com/hknkuvan/spree/internal/platform/migrations"
	platformobservability "github.com/hknkuvan/spree/internal/platform/observability"
	platformpostgres "github.com/hknkuvan/spree/internal/platform/postgres"
)

// Run boots the commerce HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "spree-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	registry := storesobs.New(
		buildRegistry(db),
		storesobs.WithLogger(logger),
		storesobs.WithTracer(instruments.Tracer("internal.stores.application")),
		storesobs.WithMeter(instruments.Meter("internal.stores.application")),
	)

	ordersRepo := buildOrdersRepository(db)
	promoEnv := promotions.Default()
	associator := ordersobs.New(
		ordersapp.NewAssociator(ordersRepo, promoEnv, logger),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	codec, err := token.NewCodec([]byte(cfg.GuestTokenSecret), token.DefaultTTL)
	if err != nil {
		return fmt.Errorf("failed to build guest token codec: %w", err)
	}

	coreMaintenance := ordersapp.NewMaintenance(ordersRepo)
	var maintenance ordersports.CartMaintenance = ordersworkflows.NewInlineCartMaintenance(coreMaintenance)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline cart sweeps", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		maintenance = ordersworkflows.NewTemporalCartMaintenance(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	storesAPI := NewStoresAPI(registry)
	cartsAPI := NewCartsAPI(associator, registry, codec, maintenance, cfg.CartSweepWindow)

	router := NewRouter(storesAPI, cartsAPI)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("commerce API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("commerce API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildRegistry(db *gorm.DB) storesports.Registry {
	storeCache := cache.New(cache.DefaultTTL)
	if db == nil {
		// The in-memory fallback still needs one country for the
		// default-country step of store saves.
		countries := storesmemory.NewCountries(storesdomain.Country{ID: 1, ISO: storesdomain.FallbackCountryISO, Name: "United States"})
		return storesapp.NewRegistry(storesmemory.NewRepository(), countries, storesmemory.NewZones(), storeCache)
	}
	return storesapp.NewRegistry(storespostgres.NewRepository(db), storespostgres.NewCountries(db), storespostgres.NewZones(db), storeCache)
}

func buildOrdersRepository(db *gorm.DB) ordersports.Repository {
	if db == nil {
		return ordersmemory.NewRepository()
	}
	return orderspostgres.NewRepository(db)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
