// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/echonova/echonova-ml/internal/logging"
)

// DefaultSlowRequest is the latency above which AccessLog warns.
const DefaultSlowRequest = time.Second

// ServiceLogger stores a logger tagged with the listener name in the request
// context. Every logging.Ctx line of the request then says which service
// answered.
func ServiceLogger(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.With().Str("listener", service).Logger()
			next.ServeHTTP(w, r.WithContext(logging.ContextWithLogger(r.Context(), logger)))
		})
	}
}

// AccessLog writes one line per finished request through logging.Ctx, so the
// line carries request_id and correlation_id. Server errors log at error
// level, requests slower than slow at warn level, everything else at debug.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			var ev *zerolog.Event
			switch {
			case sw.status >= http.StatusInternalServerError:
				ev = logger.Error()
			case duration > slow:
				ev = logger.Warn().Dur("threshold", slow)
			default:
				ev = logger.Debug()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", sw.status).
				Int("bytes", sw.bytes).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}
