// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package middleware provides the HTTP middleware shared by the emotion and
recommendation listeners.

  - RequestID: X-Request-ID propagation plus request and correlation ids for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight gauge per listener,
    labelled by chi route pattern
  - AccessLog: one structured line per request, warning on slow requests

All three are chi-style func(http.Handler) http.Handler values:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics("recommend"))
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequest))

PrometheusMetrics must run inside the chi router (r.Use), otherwise the route
pattern is not known yet and every request is labelled "unmatched".
*/
package middleware
