package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for reworm containers.
const defaultTracerName = "reworm"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "reworm").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Filter determines which stores to trace.
	// If nil, all stores are traced.
	Filter func(id string) bool

	// TraceSuppressed records a span for writes that changed nothing.
	TraceSuppressed bool
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithStoreFilter sets a filter on store identifiers.
func WithStoreFilter(filter func(id string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithTraceSuppressed enables spans for suppressed writes.
func WithTraceSuppressed(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.TraceSuppressed = enabled
	}
}

// Tracing records store activity as OpenTelemetry spans:
//   - reworm.create for every Create
//   - reworm.broadcast for every delivered change, spanning the delivery
//   - reworm.set with error status for failed writes
//   - reworm.listener_panic for recovered panics
//
// The tracer comes from the global provider unless WithTracer is given.
// Configure it in main() before creating containers:
//
//	otel.SetTracerProvider(tp)
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer
}

// NewTracing returns the tracing observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{config: config, tracer: tracer}
}

func (t *Tracing) traced(id string) bool {
	return t.config.Filter == nil || t.config.Filter(id)
}

func (t *Tracing) StoreCreated(id string, replaced bool) {
	if !t.traced(id) {
		return
	}
	_, span := t.tracer.Start(context.Background(), "reworm.create",
		trace.WithAttributes(
			attribute.String("reworm.store", id),
			attribute.Bool("reworm.replaced", replaced),
		),
	)
	span.End()
}

func (t *Tracing) Broadcast(id string, delivered int, elapsed time.Duration) {
	if !t.traced(id) {
		return
	}
	end := time.Now()
	_, span := t.tracer.Start(context.Background(), "reworm.broadcast",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.String("reworm.store", id),
			attribute.Int("reworm.listeners", delivered),
		),
	)
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(end))
}

func (t *Tracing) Suppressed(id string) {
	if !t.config.TraceSuppressed || !t.traced(id) {
		return
	}
	_, span := t.tracer.Start(context.Background(), "reworm.set",
		trace.WithAttributes(
			attribute.String("reworm.store", id),
			attribute.Bool("reworm.suppressed", true),
		),
	)
	span.End()
}

func (t *Tracing) SetFailed(id string, err error) {
	if !t.traced(id) {
		return
	}
	_, span := t.tracer.Start(context.Background(), "reworm.set",
		trace.WithAttributes(
			attribute.String("reworm.store", id),
			attribute.String("reworm.error_code", errorCode(err)),
		),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (t *Tracing) ListenerPanicked(id string, err error) {
	if !t.traced(id) {
		return
	}
	_, span := t.tracer.Start(context.Background(), "reworm.listener_panic",
		trace.WithAttributes(attribute.String("reworm.store", id)),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// ListenersChanged is not traced; the metrics gauge covers it.
func (t *Tracing) ListenersChanged(int) {}
