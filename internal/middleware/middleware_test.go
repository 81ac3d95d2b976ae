// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/metrics"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()

	var capturedID, chiID, correlationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		chiID = chimiddleware.GetReqID(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	responseID := rec.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("response X-Request-ID is not a valid UUID: %v", err)
	}
	if capturedID != responseID || chiID != responseID {
		t.Errorf("context ids (%s, %s) don't match response header %s", capturedID, chiID, responseID)
	}
	if len(correlationID) != 8 {
		t.Errorf("correlation id = %q", correlationID)
	}
}

func TestRequestID_UpstreamID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		upstream string
		keep     bool
	}{
		{"kept", "existing-request-id-12345", true},
		{"too long", strings.Repeat("x", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(HeaderRequestID, tt.upstream)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if (got == tt.upstream) != tt.keep {
				t.Errorf("response id = %q, keep = %v", got, tt.keep)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics("mw_test"))
	r.Get("/songs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/songs/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("mw_test", "GET", "/songs/{id}", "418")); got != 3 {
		t.Errorf("pattern counter = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("mw_test", "GET", unmatchedRoute, "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPActiveRequests.WithLabelValues("mw_test")); got != 0 {
		t.Errorf("active requests = %v after completion", got)
	}
}

func TestStatusWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)
	_, _ = sw.Write([]byte("hello"))
	sw.WriteHeader(http.StatusInternalServerError)

	if sw.status != http.StatusOK {
		t.Errorf("status = %d, implicit 200 should stick after the first write", sw.status)
	}
	if sw.bytes != 5 {
		t.Errorf("bytes = %d", sw.bytes)
	}
	if sw.Unwrap() != rec {
		t.Error("Unwrap should return the wrapped writer")
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	handler := RequestID(AccessLog(time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(5 * time.Millisecond)
		}
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})))

	for _, path := range []string{"/slow", "/fail"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"level":"error"`, `"path":"/slow"`, `"status":500`, `"request_id":`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestServiceLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	handler := RequestID(ServiceLogger("recommend")(AccessLog(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Ctx(r.Context()).Info().Msg("handled")
	}))))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recommend/stats", nil))

	out := buf.String()
	if got := strings.Count(out, `"listener":"recommend"`); got != 2 {
		t.Errorf("listener field on %d lines, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, `"request_id":`) {
		t.Errorf("request_id missing:\n%s", out)
	}
}
