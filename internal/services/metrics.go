package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecommendationMetrics exposes engine counters on the shared Prometheus
// registry. Outcome is "personalized" or "fallback".
type RecommendationMetrics struct {
	Requests        *prometheus.CounterVec
	ScoringDuration *prometheus.HistogramVec
}

func NewRecommendationMetrics() *RecommendationMetrics {
	return &RecommendationMetrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teamforge_recommendation_requests_total",
			Help: "Recommendation requests by target kind and outcome.",
		}, []string{"kind", "outcome"}),
		ScoringDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teamforge_recommendation_scoring_seconds",
			Help:    "Wall time spent scoring one recommendation request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}
