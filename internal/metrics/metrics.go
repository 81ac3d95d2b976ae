// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echonova_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	HTTPActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echonova_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
		[]string{"service"},
	)

	// Emotion Metrics
	EmotionPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_emotion_predictions_total",
			Help: "Successful emotion predictions by predicted label",
		},
		[]string{"label"},
	)

	EmotionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_emotion_failures_total",
			Help: "Failed emotion predictions by error code",
		},
		[]string{"code"},
	)

	EmotionInferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "echonova_emotion_inference_duration_seconds",
			Help:    "Time spent in preprocessing plus the forward pass",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	EmotionModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "echonova_emotion_model_loaded",
			Help: "1 when the emotion network is loaded",
		},
	)

	// Recommendation Metrics
	RecommendQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_recommend_queries_total",
			Help: "Recommendation queries by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echonova_recommend_query_duration_seconds",
			Help:    "Recommendation query latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"mode"},
	)

	RecommendCatalogSongs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "echonova_recommend_catalog_songs",
			Help: "Songs in the built recommendation model",
		},
	)

	RecommendFeatures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "echonova_recommend_features",
			Help: "Feature columns in the recommendation schema",
		},
	)

	RecommendClusterSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echonova_recommend_cluster_size",
			Help: "Songs per cluster",
		},
		[]string{"cluster"},
	)

	RecommendBuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "echonova_recommend_build_duration_seconds",
			Help: "Wall time of the last model build",
		},
	)

	RecommendCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_recommend_cache_requests_total",
			Help: "Result cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echonova_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echonova_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordHTTPRequest records one finished request.
func RecordHTTPRequest(service, method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(service, method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge for service up or down.
func TrackActiveRequest(service string, inc bool) {
	if inc {
		HTTPActiveRequests.WithLabelValues(service).Inc()
	} else {
		HTTPActiveRequests.WithLabelValues(service).Dec()
	}
}

// RecordPrediction records a successful classification.
func RecordPrediction(label string, duration time.Duration) {
	EmotionPredictions.WithLabelValues(label).Inc()
	EmotionInferenceDuration.Observe(duration.Seconds())
}

// RecordPredictionFailure records a failed classification by error code.
func RecordPredictionFailure(code string) {
	EmotionFailures.WithLabelValues(code).Inc()
}

// SetModelLoaded sets the loaded gauge.
func SetModelLoaded(loaded bool) {
	if loaded {
		EmotionModelLoaded.Set(1)
	} else {
		EmotionModelLoaded.Set(0)
	}
}

// RecordRecommendQuery records a query outcome ("ok" or an error code).
func RecordRecommendQuery(mode, outcome string, duration time.Duration) {
	RecommendQueries.WithLabelValues(mode, outcome).Inc()
	RecommendQueryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordModelBuild publishes the shape of a freshly built recommendation model.
func RecordModelBuild(songs, features int, clusterSizes []int, duration time.Duration) {
	RecommendCatalogSongs.Set(float64(songs))
	RecommendFeatures.Set(float64(features))
	RecommendBuildDuration.Set(duration.Seconds())
	RecommendClusterSize.Reset()
	for c, size := range clusterSizes {
		RecommendClusterSize.WithLabelValues(strconv.Itoa(c)).Set(float64(size))
	}
}

// RecordCacheLookup records a result cache lookup: "hit", "miss" or "error".
func RecordCacheLookup(result string) {
	RecommendCacheRequests.WithLabelValues(result).Inc()
}
