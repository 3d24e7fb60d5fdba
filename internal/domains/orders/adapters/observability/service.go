package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/shopspring/decimal"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/orders/ports"
)

const tracerName = "github.com/hknkuvan/spree/internal/domains/orders/adapters/observability/service"

// Associator decorates the order association port with tracing, logging, and metrics.
type Associator struct {
	inner   ports.Associator
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics associatorMetrics
}

type Option func(*Associator)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Associator) {
		a.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(a *Associator) {
		a.tracer = tr
	}
}

// WithMeter injects the meter used to create associator metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(a *Associator) {
		a.metrics = newAssociatorMetrics(m)
	}
}

// New wires a decorator around the core associator.
func New(inner ports.Associator, opts ...Option) ports.Associator {
	a := &Associator{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newAssociatorMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.tracer == nil {
		a.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if a.logger == nil {
		a.logger = defaultLogger()
	}
	return a
}

// SimpleCurrentOrder looks up the current cart without creating one.
func (a *Associator) SimpleCurrentOrder(ctx context.Context, rc ports.RequestContext) (*domain.Order, error) {
	ctx, span := a.startSpan(ctx, "Associator.SimpleCurrentOrder", requestAttrs(rc)...)
	defer span.End()

	order, err := a.inner.SimpleCurrentOrder(ctx, rc)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to look up current order")
	}
	span.SetAttributes(attribute.Bool("order.persisted", order.Persisted()))
	return order, nil
}

// CurrentOrder resolves or creates the current cart with instrumentation.
func (a *Associator) CurrentOrder(ctx context.Context, rc ports.RequestContext, create bool) (*domain.Order, error) {
	attrs := append(requestAttrs(rc), attribute.Bool("order.create_if_missing", create))
	ctx, span := a.startSpan(ctx, "Associator.CurrentOrder", attrs...)
	defer span.End()

	order, err := a.inner.CurrentOrder(ctx, rc, create)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to resolve current order")
	}
	a.metrics.recordResolved(ctx, order.Persisted())
	if order.Persisted() {
		span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.number", order.Number))
	}
	return order, nil
}

// AssociateUser binds an order to a signed-in user with instrumentation.
func (a *Associator) AssociateUser(ctx context.Context, rc ports.RequestContext, order *domain.Order) (*domain.Order, error) {
	ctx, span := a.startSpan(ctx, "Associator.AssociateUser", attribute.Int64("order.id", order.ID))
	defer span.End()

	updated, err := a.inner.AssociateUser(ctx, rc, order)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to associate user with order", slog.Int64("order.id", order.ID))
	}
	a.metrics.recordAssociated(ctx)
	return updated, nil
}

// SetCurrentOrder merges previous incomplete carts into the current one.
func (a *Associator) SetCurrentOrder(ctx context.Context, rc ports.RequestContext, current *domain.Order) (*domain.Order, error) {
	attrs := append(requestAttrs(rc), attribute.Int64("order.id", current.ID))
	ctx, span := a.startSpan(ctx, "Associator.SetCurrentOrder", attrs...)
	defer span.End()

	order, err := a.inner.SetCurrentOrder(ctx, rc, current)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to reconcile current order", slog.Int64("order.id", current.ID))
	}
	a.metrics.recordMerged(ctx)
	if order.Persisted() {
		a.logInfo(ctx, "current order reconciled",
			slog.Int64("order.id", order.ID),
			slog.Int("order.item_count", int(order.ItemCount())),
		)
	}
	return order, nil
}

// AddLineItem puts a variant into the current cart with instrumentation.
func (a *Associator) AddLineItem(ctx context.Context, rc ports.RequestContext, variantID int64, quantity int32, unitPrice decimal.Decimal) (*domain.Order, error) {
	attrs := append(requestAttrs(rc),
		attribute.Int64("item.variant_id", variantID),
		attribute.Int("item.quantity", int(quantity)),
	)
	ctx, span := a.startSpan(ctx, "Associator.AddLineItem", attrs...)
	defer span.End()

	order, err := a.inner.AddLineItem(ctx, rc, variantID, quantity, unitPrice)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to add line item", slog.Int64("item.variant_id", variantID))
	}
	a.metrics.recordItemAdded(ctx)
	span.SetAttributes(attribute.Int64("order.id", order.ID))
	return order, nil
}

// ApplyPromotion attaches a promotion to the current cart with instrumentation.
func (a *Associator) ApplyPromotion(ctx context.Context, rc ports.RequestContext, name string) (*domain.Order, error) {
	attrs := append(requestAttrs(rc), attribute.String("promotion.name", name))
	ctx, span := a.startSpan(ctx, "Associator.ApplyPromotion", attrs...)
	defer span.End()

	order, err := a.inner.ApplyPromotion(ctx, rc, name)
	if err != nil {
		return nil, a.handleError(ctx, span, err, "failed to apply promotion", slog.String("promotion.name", name))
	}
	a.logInfo(ctx, "promotion applied",
		slog.Int64("order.id", order.ID),
		slog.String("promotion.name", name),
	)
	return order, nil
}

// CurrentCurrency reports the currency of the request's store.
func (a *Associator) CurrentCurrency(rc ports.RequestContext) string {
	return a.inner.CurrentCurrency(rc)
}

func (a *Associator) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := a.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (a *Associator) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if a.logger == nil {
		return
	}
	a.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (a *Associator) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if a.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		a.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func requestAttrs(rc ports.RequestContext) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool("request.authenticated", rc.Authenticated()),
	}
	if rc.Store != nil {
		attrs = append(attrs, attribute.Int64("store.id", rc.Store.ID))
	}
	return attrs
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type associatorMetrics struct {
	resolved   metric.Int64Counter
	associated metric.Int64Counter
	merged     metric.Int64Counter
	itemsAdded metric.Int64Counter
}

func newAssociatorMetrics(m metric.Meter) associatorMetrics {
	if m == nil {
		return associatorMetrics{}
	}
	resolved, _ := m.Int64Counter("orders.associator.resolved", metric.WithDescription("Number of current-order resolutions"))
	associated, _ := m.Int64Counter("orders.associator.associated", metric.WithDescription("Number of user associations"))
	merged, _ := m.Int64Counter("orders.associator.merged", metric.WithDescription("Number of cart reconciliations"))
	itemsAdded, _ := m.Int64Counter("orders.associator.items_added", metric.WithDescription("Number of line items added"))
	return associatorMetrics{resolved: resolved, associated: associated, merged: merged, itemsAdded: itemsAdded}
}

func (m associatorMetrics) recordResolved(ctx context.Context, persisted bool) {
	addCounter(ctx, m.resolved, 1, attribute.Bool("order.persisted", persisted))
}

func (m associatorMetrics) recordAssociated(ctx context.Context) {
	addCounter(ctx, m.associated, 1)
}

func (m associatorMetrics) recordMerged(ctx context.Context) {
	addCounter(ctx, m.merged, 1)
}

func (m associatorMetrics) recordItemAdded(ctx context.Context) {
	addCounter(ctx, m.itemsAdded, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Associator = (*Associator)(nil)
