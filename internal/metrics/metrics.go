package metrics

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
)

const namespace = "ratethestore"

// CountFunc reports the current size of a table at scrape time.
type CountFunc func() (int64, error)

// Metrics owns a registry with HTTP, rating and inventory collectors.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	ratingsSubmitted *prometheus.CounterVec
}

// New registers all collectors. counts maps an entity name (users, stores,
// ratings) to its counter; it may be nil.
func New(counts map[string]CountFunc) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),

		ratingsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_submitted_total",
			Help:      "Rating submissions by outcome.",
		}, []string{"outcome"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.ratingsSubmitted,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	for entity, count := range counts {
		m.Registry.MustRegister(newEntityGauge(entity, count))
	}

	return m
}

func newEntityGauge(entity string, count CountFunc) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "entities",
		Help:        "Current number of stored records by entity.",
		ConstLabels: prometheus.Labels{"entity": entity},
	}, func() float64 {
		n, err := count()
		if err != nil {
			logger.Warn("Failed to count entities for metrics", map[string]interface{}{
				"entity": entity,
				"error":  err.Error(),
			})
			return math.NaN()
		}
		return float64(n)
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge; call the returned func when done.
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveRequest records one completed request. route should be the
// registered route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRatingSubmission counts one rating submission outcome.
func (m *Metrics) ObserveRatingSubmission(outcome string) {
	m.ratingsSubmitted.WithLabelValues(outcome).Inc()
}
