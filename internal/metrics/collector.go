// Package metrics provides Prometheus instrumentation for the parsing and
// artifact lifecycle paths.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector owns the engine's metric families. Instrumentation happens at
// the server boundary; the engine packages stay free of metric calls.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	parsesTotal   *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec

	artifactSavesTotal  *prometheus.CounterVec
	approvalsTotal      *prometheus.CounterVec
	approvalCascadeSize prometheus.Histogram

	logger *zap.Logger
}

// NewCollector registers the metric families with reg. A nil reg uses the
// default registry, which is what the serve path wants; tests pass their own.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.parsesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Total number of response parses",
		},
		[]string{"strategy", "outcome"},
	)

	c.parseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Response parse duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"strategy"},
	)

	c.artifactSavesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_saves_total",
			Help:      "Total number of reconciled artifact saves",
		},
		[]string{"artifact_type", "status"},
	)

	c.approvalsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approvals_total",
			Help:      "Total number of approval attempts",
		},
		[]string{"outcome"},
	)

	c.approvalCascadeSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "approval_cascade_size",
			Help:      "Number of artifacts approved per cascade",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordParse records one parse attempt and the strategy that settled it.
func (c *Collector) RecordParse(strategy string, ok bool, duration time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	c.parsesTotal.WithLabelValues(strategy, outcome).Inc()
	c.parseDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordArtifactSave records one reconciled save by type and resulting status.
func (c *Collector) RecordArtifactSave(artifactType, status string) {
	c.artifactSavesTotal.WithLabelValues(artifactType, status).Inc()
}

// RecordApproval records one approval attempt and its cascade size.
func (c *Collector) RecordApproval(cascadeSize int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	c.approvalsTotal.WithLabelValues(outcome).Inc()
	if err == nil && cascadeSize > 0 {
		c.approvalCascadeSize.Observe(float64(cascadeSize))
	}
}

// statusClass buckets an HTTP status code for the status label.
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
