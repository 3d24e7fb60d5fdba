package carts

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/hknkuvan/spree/internal/domains/orders/ports"
)

const (
	// SweepAbandonedCartsActivityName purges guest carts past the abandonment window.
	SweepAbandonedCartsActivityName = "carts.activities.SweepAbandonedCarts"
)

// SweepInput carries the abandonment window for one sweep run.
type SweepInput struct {
	OlderThan time.Duration
}

// SweepResult reports how many carts one run removed.
type SweepResult struct {
	Purged int64
}

// Activities groups activities operating on the orders bounded context.
type Activities struct {
	maintenance ports.CartMaintenance
}

// NewActivities wires the cart maintenance collaborator into the Temporal activities bundle.
func NewActivities(maintenance ports.CartMaintenance) *Activities {
	return &Activities{maintenance: maintenance}
}

// SweepAbandonedCarts removes guest carts untouched for the configured window.
func (a *Activities) SweepAbandonedCarts(ctx context.Context, input SweepInput) (SweepResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.maintenance == nil {
		logger.Error("cart sweep activity not initialized")
		return SweepResult{}, errors.New("cart sweep activity not initialized")
	}
	logger.Info("SweepAbandonedCarts activity started", "olderThan", input.OlderThan.String())
	purged, err := a.maintenance.SweepAbandonedCarts(ctx, input.OlderThan)
	if err != nil {
		logger.Error("SweepAbandonedCarts activity failed", "error", err)
		return SweepResult{}, err
	}
	logger.Info("SweepAbandonedCarts activity completed", "purged", purged)
	return SweepResult{Purged: purged}, nil
}
