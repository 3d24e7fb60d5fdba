package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/hknkuvan/spree/internal/domains/orders/ports"
	cartactivities "github.com/hknkuvan/spree/internal/platform/temporal/activities/carts"
	cartworkflows "github.com/hknkuvan/spree/internal/platform/temporal/workflows/carts"
)

var (
	_ ports.CartMaintenance = (*TemporalCartMaintenance)(nil)
	_ ports.CartMaintenance = (*InlineCartMaintenance)(nil)
)

// TemporalCartMaintenance starts cart sweeps on a Temporal cluster.
type TemporalCartMaintenance struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCartMaintenance wires a Temporal client into the orchestrator.
func NewTemporalCartMaintenance(c client.Client) *TemporalCartMaintenance {
	return &TemporalCartMaintenance{client: c, taskQueue: cartworkflows.CartSweepTaskQueue}
}

// SweepAbandonedCarts starts the durable sweep workflow and waits for its result.
func (o *TemporalCartMaintenance) SweepAbandonedCarts(ctx context.Context, olderThan time.Duration) (int64, error) {
	if o == nil || o.client == nil {
		return 0, errors.New("temporal cart maintenance not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	// One sweep per window bucket; concurrent triggers attach to the running sweep.
	workflowID := fmt.Sprintf("cart-sweep-%d", time.Now().Truncate(olderThan).Unix())
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		cartworkflows.CartSweepWorkflow,
		cartworkflows.CartSweepWorkflowInput{OlderThan: olderThan, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var result cartactivities.SweepResult
			if err := existingRun.Get(ctx, &result); err != nil {
				return 0, err
			}
			return result.Purged, nil
		}
		return 0, err
	}
	var result cartactivities.SweepResult
	if err := run.Get(ctx, &result); err != nil {
		return 0, err
	}
	return result.Purged, nil
}

// InlineCartMaintenance executes the sweep directly without Temporal, useful for tests or dev fallbacks.
type InlineCartMaintenance struct {
	maintenance ports.CartMaintenance
}

// NewInlineCartMaintenance wraps the maintenance service for synchronous execution.
func NewInlineCartMaintenance(maintenance ports.CartMaintenance) *InlineCartMaintenance {
	return &InlineCartMaintenance{maintenance: maintenance}
}

// SweepAbandonedCarts delegates to the application service without durable orchestration.
func (o *InlineCartMaintenance) SweepAbandonedCarts(ctx context.Context, olderThan time.Duration) (int64, error) {
	if o == nil || o.maintenance == nil {
		return 0, errors.New("inline cart maintenance not configured")
	}
	return o.maintenance.SweepAbandonedCarts(ctx, olderThan)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
