package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/hknkuvan/spree/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/hknkuvan/spree/internal/domains/orders/application"
	platformpostgres "github.com/hknkuvan/spree/internal/platform/postgres"
)

// defaultSweepWindow mirrors the API's cart sweep default.
const defaultSweepWindow = 30 * 24 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot sweep carts")
	}

	maintenance := ordersapp.NewMaintenance(orderspostgres.NewRepository(db))
	purged, err := maintenance.SweepAbandonedCarts(ctx, sweepWindowFromEnv())
	if err != nil {
		log.Fatalf("failed to sweep carts: %v", err)
	}
	log.Printf("cart sweep completed, purged %d carts", purged)
}

func sweepWindowFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("CART_SWEEP_WINDOW_HOURS"))
	if raw == "" {
		return defaultSweepWindow
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultSweepWindow
	}
	return time.Duration(hours) * time.Hour
}
