package carts

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	cartactivities "github.com/hknkuvan/spree/internal/platform/temporal/activities/carts"
)

const (
	// CartSweepWorkflowName is the public identifier for registering the workflow.
	CartSweepWorkflowName = "carts.workflows.Sweep"
	// CartSweepTaskQueue is the queue consumed by the worker processing cart sweeps.
	CartSweepTaskQueue = "CART_SWEEP"
)

// CartSweepWorkflowInput captures the payload required to run one sweep.
type CartSweepWorkflowInput struct {
	OlderThan time.Duration
	TraceID   string
}

// CartSweepWorkflow orchestrates the purge of abandoned guest carts.
func CartSweepWorkflow(ctx workflow.Context, input CartSweepWorkflowInput) (cartactivities.SweepResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CartSweepWorkflow started", withTraceID(input.TraceID, "olderThan", input.OlderThan.String())...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var result cartactivities.SweepResult
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, options),
		cartactivities.SweepAbandonedCartsActivityName,
		cartactivities.SweepInput{OlderThan: input.OlderThan},
	).Get(ctx, &result)
	if err != nil {
		logger.Error("CartSweepWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return cartactivities.SweepResult{}, err
	}
	logger.Info("CartSweepWorkflow completed", withTraceID(input.TraceID, "purged", result.Purged)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
