package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersmemory "github.com/hknkuvan/spree/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/hknkuvan/spree/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/hknkuvan/spree/internal/domains/orders/application"
	ordersports "github.com/hknkuvan/spree/internal/domains/orders/ports"
	"github.com/hknkuvan/spree/internal/platform/migrations"
	platformobservability "github.com/hknkuvan/spree/internal/platform/observability"
	platformpostgres "github.com/hknkuvan/spree/internal/platform/postgres"
	cartactivities "github.com/hknkuvan/spree/internal/platform/temporal/activities/carts"
	cartworkflows "github.com/hknkuvan/spree/internal/platform/temporal/workflows/carts"
)

func main() {
	ctx := context.Background()
	const serviceName = "spree-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	ordersRepo, cleanupRepo := buildOrdersRepository(ctx, logger)
	defer cleanupRepo()
	maintenance := ordersapp.NewMaintenance(ordersRepo)
	activities := cartactivities.NewActivities(maintenance)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cartworkflows.CartSweepTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(cartworkflows.CartSweepWorkflow, workflow.RegisterOptions{Name: cartworkflows.CartSweepWorkflowName})
	w.RegisterActivityWithOptions(activities.SweepAbandonedCarts, activity.RegisterOptions{Name: cartactivities.SweepAbandonedCartsActivityName})

	logger.Info("worker listening", slog.String("taskQueue", cartworkflows.CartSweepTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrdersRepository(ctx context.Context, logger *slog.Logger) (ordersports.Repository, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return ordersmemory.NewRepository(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("worker failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("worker orders repository configured with postgres")
	return orderspostgres.NewRepository(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
