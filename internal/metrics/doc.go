// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package metrics defines the Prometheus collectors exported on /metrics by both
HTTP listeners.

# Available Metrics

HTTP (recorded by middleware.PrometheusMetrics, labelled by chi route pattern):
  - echonova_http_requests_total{service,method,route,status}
  - echonova_http_request_duration_seconds{service,method,route}
  - echonova_http_active_requests{service}

Emotion:
  - echonova_emotion_predictions_total{label}
  - echonova_emotion_failures_total{code}
  - echonova_emotion_inference_duration_seconds
  - echonova_emotion_model_loaded

Recommendation:
  - echonova_recommend_queries_total{mode,outcome}
  - echonova_recommend_query_duration_seconds{mode}
  - echonova_recommend_catalog_songs, echonova_recommend_features
  - echonova_recommend_cluster_size{cluster}
  - echonova_recommend_build_duration_seconds
  - echonova_recommend_cache_requests_total{result}

Client circuit breakers:
  - echonova_circuit_breaker_state{name}
  - echonova_circuit_breaker_requests_total{name,result}
  - echonova_circuit_breaker_state_transitions_total{name,from_state,to_state}

All collectors register with the default registry through promauto.
*/
package metrics
