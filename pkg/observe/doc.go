// Package observe provides reworm.Observer implementations for Prometheus
// metrics and OpenTelemetry tracing.
//
//	metrics := observe.NewMetrics(observe.WithRegistry(prometheus.DefaultRegisterer))
//	tracing := observe.NewTracing(observe.WithTracerName("my-app"))
//
//	c := reworm.NewContainer(
//	    reworm.WithObserver(metrics),
//	    reworm.WithObserver(tracing),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
package observe
