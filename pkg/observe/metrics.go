package observe

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	rerrors "github.com/pedronauck/reworm/internal/errors"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reworm").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for broadcast duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reworm",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records store activity as Prometheus metrics.
//
// Metrics collected:
//   - reworm_stores_created_total: stores created, by whether they replaced one
//   - reworm_broadcasts_total: changed values delivered, by store
//   - reworm_broadcast_duration_seconds: time spent delivering one broadcast
//   - reworm_broadcast_listeners: listeners invoked per broadcast
//   - reworm_suppressed_writes_total: writes that changed nothing, by store
//   - reworm_set_errors_total: failed writes, by store and error code
//   - reworm_listener_panics_total: recovered listener panics, by store
//   - reworm_listeners: listeners currently registered
type Metrics struct {
	storesCreated      *prometheus.CounterVec
	broadcasts         *prometheus.CounterVec
	broadcastDuration  *prometheus.HistogramVec
	broadcastListeners prometheus.Histogram
	suppressed         *prometheus.CounterVec
	setErrors          *prometheus.CounterVec
	listenerPanics     *prometheus.CounterVec
	listeners          prometheus.Gauge
}

// NewMetrics registers the metrics and returns the observer.
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		storesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stores_created_total",
			Help:        "Total number of stores created",
			ConstLabels: config.ConstLabels,
		}, []string{"replaced"}),

		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "broadcasts_total",
			Help:        "Total number of changed values broadcast",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		broadcastDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "broadcast_duration_seconds",
			Help:        "Time spent delivering a broadcast to all listeners",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		broadcastListeners: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "broadcast_listeners",
			Help:        "Number of listeners invoked per broadcast",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "suppressed_writes_total",
			Help:        "Total number of writes that produced an equal value",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		setErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "set_errors_total",
			Help:        "Total number of failed writes",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "code"}),

		listenerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_panics_total",
			Help:        "Total number of recovered listener panics",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		listeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners",
			Help:        "Number of registered listeners",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) StoreCreated(_ string, replaced bool) {
	label := "false"
	if replaced {
		label = "true"
	}
	m.storesCreated.WithLabelValues(label).Inc()
}

func (m *Metrics) Broadcast(id string, delivered int, elapsed time.Duration) {
	m.broadcasts.WithLabelValues(id).Inc()
	m.broadcastDuration.WithLabelValues(id).Observe(elapsed.Seconds())
	m.broadcastListeners.Observe(float64(delivered))
}

func (m *Metrics) Suppressed(id string) {
	m.suppressed.WithLabelValues(id).Inc()
}

func (m *Metrics) SetFailed(id string, err error) {
	m.setErrors.WithLabelValues(id, errorCode(err)).Inc()
}

func (m *Metrics) ListenerPanicked(id string, _ error) {
	m.listenerPanics.WithLabelValues(id).Inc()
}

func (m *Metrics) ListenersChanged(n int) {
	m.listeners.Set(float64(n))
}

// errorCode returns the reworm error code of err, keeping label
// cardinality bounded.
func errorCode(err error) string {
	var re *rerrors.ReworkError
	if errors.As(err, &re) && re.Code != "" {
		return re.Code
	}
	return "unknown"
}
