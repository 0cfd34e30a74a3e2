// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Stream metrics
	AlertsFetched prometheus.Counter
	ChunksFetched prometheus.Counter
	StreamRetries prometheus.Counter

	// Archive metrics
	StreamsInitiated      prometheus.Counter
	ArchiveRequestLatency *prometheus.HistogramVec

	// Pipeline metrics
	ObjectsMerged     prometheus.Counter
	DetectionsMerged  prometheus.Counter
	FeaturesExtracted prometheus.Counter
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ztf_alert_lab"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		// Stream metrics
		AlertsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "alerts_fetched_total",
			Help:      "Total number of alerts fetched from the archive stream",
		}),
		ChunksFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "chunks_fetched_total",
			Help:      "Total number of stream chunks fetched",
		}),
		StreamRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "retries_total",
			Help:      "Total number of not-ready retries while consuming streams",
		}),

		// Archive metrics
		StreamsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "streams_initiated_total",
			Help:      "Total number of stream queries accepted by the archive",
		}),
		ArchiveRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "request_latency_seconds",
			Help:      "Archive HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Pipeline metrics
		ObjectsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "objects_merged_total",
			Help:      "Total number of objects consolidated by the merger",
		}),
		DetectionsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "detections_merged_total",
			Help:      "Total number of detections in consolidated histories",
		}),
		FeaturesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "features_extracted_total",
			Help:      "Total number of feature records extracted",
		}),
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
