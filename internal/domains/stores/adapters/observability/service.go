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

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

const tracerName = "github.com/hknkuvan/spree/internal/domains/stores/adapters/observability/service"

// Registry decorates the store registry port with tracing, logging, and metrics.
type Registry struct {
	inner   ports.Registry
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics registryMetrics
}

type Option func(*Registry)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tr
	}
}

// WithMeter injects the meter used to create registry metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(r *Registry) {
		r.metrics = newRegistryMetrics(m)
	}
}

// New wires a decorator around the core registry.
func New(inner ports.Registry, opts ...Option) ports.Registry {
	r := &Registry{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newRegistryMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.tracer == nil {
		r.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if r.logger == nil {
		r.logger = defaultLogger()
	}
	return r
}

// Resolve finds the store serving the request host with instrumentation.
func (r *Registry) Resolve(ctx context.Context, host string) (*domain.Store, error) {
	ctx, span := r.startSpan(ctx, "Registry.Resolve", attribute.String("store.host", host))
	defer span.End()

	store, err := r.inner.Resolve(ctx, host)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to resolve store", slog.String("host", host))
	}
	r.metrics.recordResolved(ctx, store.Persisted())
	span.SetAttributes(attribute.Int64("store.id", store.ID), attribute.Bool("store.default", store.Default))
	return store, nil
}

// Default returns the default store with instrumentation.
func (r *Registry) Default(ctx context.Context) (*domain.Store, error) {
	ctx, span := r.startSpan(ctx, "Registry.Default")
	defer span.End()

	store, err := r.inner.Default(ctx)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to load default store")
	}
	span.SetAttributes(attribute.Bool("store.persisted", store.Persisted()))
	return store, nil
}

// Save persists a store with instrumentation.
func (r *Registry) Save(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	ctx, span := r.startSpan(ctx, "Registry.Save", attribute.Int64("store.id", store.ID))
	defer span.End()

	r.logInfo(ctx, "saving store", slog.Int64("store.id", store.ID), slog.String("store.code", store.Code))
	saved, err := r.inner.Save(ctx, store)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to save store", slog.Int64("store.id", store.ID))
	}
	r.metrics.recordSaved(ctx)
	r.logInfo(ctx, "store saved", slog.Int64("store.id", saved.ID), slog.Bool("store.default", saved.Default))
	return saved, nil
}

// Delete removes a store with instrumentation.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	ctx, span := r.startSpan(ctx, "Registry.Delete", attribute.Int64("store.id", id))
	defer span.End()

	r.logInfo(ctx, "deleting store", slog.Int64("store.id", id))
	if err := r.inner.Delete(ctx, id); err != nil {
		return r.handleError(ctx, span, err, "failed to delete store", slog.Int64("store.id", id))
	}
	r.metrics.recordDeleted(ctx)
	r.logInfo(ctx, "store deleted", slog.Int64("store.id", id))
	return nil
}

// CanBeDeleted reports deletability with instrumentation.
func (r *Registry) CanBeDeleted(ctx context.Context, store *domain.Store) (bool, error) {
	ctx, span := r.startSpan(ctx, "Registry.CanBeDeleted", attribute.Int64("store.id", store.ID))
	defer span.End()

	ok, err := r.inner.CanBeDeleted(ctx, store)
	if err != nil {
		return false, r.handleError(ctx, span, err, "failed to check store deletability", slog.Int64("store.id", store.ID))
	}
	span.SetAttributes(attribute.Bool("store.can_be_deleted", ok))
	return ok, nil
}

// GetByID loads a single store.
func (r *Registry) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	ctx, span := r.startSpan(ctx, "Registry.GetByID", attribute.Int64("store.id", id))
	defer span.End()

	store, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to load store", slog.Int64("store.id", id))
	}
	return store, nil
}

// List exposes all stores.
func (r *Registry) List(ctx context.Context, includeDeleted bool) ([]*domain.Store, error) {
	ctx, span := r.startSpan(ctx, "Registry.List", attribute.Bool("store.include_deleted", includeDeleted))
	defer span.End()

	stores, err := r.inner.List(ctx, includeDeleted)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to list stores")
	}
	span.SetAttributes(attribute.Int("store.result.count", len(stores)))
	return stores, nil
}

// CountriesAvailableForCheckout resolves checkout countries.
func (r *Registry) CountriesAvailableForCheckout(ctx context.Context, store *domain.Store) ([]domain.Country, error) {
	ctx, span := r.startSpan(ctx, "Registry.CountriesAvailableForCheckout", attribute.Int64("store.id", store.ID))
	defer span.End()

	countries, err := r.inner.CountriesAvailableForCheckout(ctx, store)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to resolve checkout countries", slog.Int64("store.id", store.ID))
	}
	span.SetAttributes(attribute.Int("store.checkout_countries", len(countries)))
	return countries, nil
}

// StatesAvailableForCheckout resolves checkout states for one country.
func (r *Registry) StatesAvailableForCheckout(ctx context.Context, store *domain.Store, countryISO string) ([]domain.State, error) {
	ctx, span := r.startSpan(ctx, "Registry.StatesAvailableForCheckout",
		attribute.Int64("store.id", store.ID),
		attribute.String("country.iso", countryISO),
	)
	defer span.End()

	states, err := r.inner.StatesAvailableForCheckout(ctx, store, countryISO)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to resolve checkout states", slog.String("country.iso", countryISO))
	}
	return states, nil
}

// AvailableLocales unions supported locales across stores.
func (r *Registry) AvailableLocales(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "Registry.AvailableLocales")
	defer span.End()

	locales, err := r.inner.AvailableLocales(ctx)
	if err != nil {
		return nil, r.handleError(ctx, span, err, "failed to union available locales")
	}
	span.SetAttributes(attribute.Int("store.locales", len(locales)))
	return locales, nil
}

func (r *Registry) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := r.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r *Registry) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (r *Registry) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if r.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		r.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type registryMetrics struct {
	resolved metric.Int64Counter
	saved    metric.Int64Counter
	deleted  metric.Int64Counter
}

func newRegistryMetrics(m metric.Meter) registryMetrics {
	if m == nil {
		return registryMetrics{}
	}
	resolved, _ := m.Int64Counter("stores.registry.resolved", metric.WithDescription("Number of store resolutions"))
	saved, _ := m.Int64Counter("stores.registry.saved", metric.WithDescription("Number of store saves"))
	deleted, _ := m.Int64Counter("stores.registry.deleted", metric.WithDescription("Number of store deletions"))
	return registryMetrics{resolved: resolved, saved: saved, deleted: deleted}
}

func (m registryMetrics) recordResolved(ctx context.Context, persisted bool) {
	addCounter(ctx, m.resolved, 1, attribute.Bool("store.persisted", persisted))
}

func (m registryMetrics) recordSaved(ctx context.Context) {
	addCounter(ctx, m.saved, 1)
}

func (m registryMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.deleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Registry = (*Registry)(nil)
