package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// GuestTokenSecret signs the guest cart cookie. The default only
	// suits local development.
	GuestTokenSecret string
	// CartSweepWindow is how long a guest cart may sit untouched before
	// a sweep removes it.
	CartSweepWindow time.Duration
}

// DefaultCartSweepWindow keeps abandoned guest carts for thirty days.
const DefaultCartSweepWindow = 30 * 24 * time.Hour

// LoadConfig reads a .env file when present, applies environment
// variables and defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		GuestTokenSecret:  envDefault("GUEST_TOKEN_SECRET", "development-only-secret"),
		CartSweepWindow:   DefaultCartSweepWindow,
	}
	if raw := strings.TrimSpace(os.Getenv("CART_SWEEP_WINDOW_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("CART_SWEEP_WINDOW_HOURS must be a positive integer")
		}
		cfg.CartSweepWindow = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
