package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// RecommendationMetrics tracks recommendation traffic by comfort level and
// by the branch (cold start or personalized) that served it.
type RecommendationMetrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	emptyResults  *prometheus.CounterVec
	readingEvents *prometheus.CounterVec
}

func NewRecommendationMetrics(registerer prometheus.Registerer, logger *logrus.Logger) *RecommendationMetrics {
	m := &RecommendationMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myndreader_recommendations_total",
			Help: "Recommendation requests served",
		}, []string{"comfort_level", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myndreader_recommendation_duration_seconds",
			Help:    "Time spent producing a recommendation list",
			Buckets: prometheus.DefBuckets,
		}, []string{"comfort_level"}),
		emptyResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myndreader_recommendations_empty_total",
			Help: "Recommendation requests that produced no books",
		}, []string{"comfort_level"}),
		readingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myndreader_reading_events_consumed_total",
			Help: "Reading events consumed from Kafka",
		}, []string{"type", "status"}),
	}

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m.requests = registerCollector(registerer, m.requests, logger)
	m.latency = registerCollector(registerer, m.latency, logger)
	m.emptyResults = registerCollector(registerer, m.emptyResults, logger)
	m.readingEvents = registerCollector(registerer, m.readingEvents, logger)

	return m
}

// registerCollector registers c, reusing the existing collector when one
// with the same descriptor is already registered.
func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, c T, logger *logrus.Logger) T {
	if err := registerer.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		logger.WithError(err).Warn("Failed to register metric")
	}
	return c
}

func (m *RecommendationMetrics) observe(level string, path string, seconds float64, empty bool) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(level, path).Inc()
	m.latency.WithLabelValues(level).Observe(seconds)
	if empty {
		m.emptyResults.WithLabelValues(level).Inc()
	}
}

func (m *RecommendationMetrics) readingEventConsumed(eventType, status string) {
	if m == nil {
		return
	}
	m.readingEvents.WithLabelValues(eventType, status).Inc()
}
