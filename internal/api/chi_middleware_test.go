// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/cors"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()
	m := NewChiMiddleware(nil)

	if m.config == nil {
		t.Fatal("config is nil")
	}
	if len(m.config.CORS.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want []", m.config.CORS.AllowedOrigins)
	}
	want := map[RouteClass]int{ClassRecommend: 100, ClassPredict: 60, ClassOps: 1000}
	for class, n := range want {
		if got := m.config.Limits[class].Requests; got != n {
			t.Errorf("%s limit = %d, want %d", class, got, n)
		}
		if _, ok := m.limiters[class]; !ok {
			t.Errorf("%s limiter not built", class)
		}
	}
}

func TestChiMiddleware_CORS(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORS: cors.Options{
			AllowedOrigins: []string{"https://app.echonova.test"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		},
	})
	handler := m.CORS()(okHandler())

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", http.MethodPost, "https://app.echonova.test", "https://app.echonova.test"},
		{"disallowed origin", http.MethodPost, "https://evil.test", ""},
		{"no origin", http.MethodGet, "", ""},
		{"preflight", http.MethodOptions, "https://app.echonova.test", "https://app.echonova.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/recommend/by-title", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestChiMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		Limits: map[RouteClass]Limit{ClassRecommend: {Requests: 3, Window: time.Minute}},
	})
	handler := m.Limit(ClassRecommend)(okHandler())

	var ok, limited int
	var lastBody string
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
			lastBody = w.Body.String()
		}
	}

	if ok != 3 || limited != 2 {
		t.Errorf("ok=%d limited=%d, want 3 and 2", ok, limited)
	}
	if !strings.Contains(lastBody, `"code":"TOO_MANY_REQUESTS"`) {
		t.Errorf("limited body = %s", lastBody)
	}
}

func TestChiMiddleware_RateLimit_DifferentIPs(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		Limits: map[RouteClass]Limit{ClassRecommend: {Requests: 1, Window: time.Minute}},
	})
	handler := m.Limit(ClassRecommend)(okHandler())

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", ip, w.Code)
		}
	}
}

func TestChiMiddleware_RateLimit_Disabled(t *testing.T) {
	t.Parallel()

	limits := map[RouteClass]Limit{
		ClassRecommend: {Requests: 1, Window: time.Minute},
		ClassPredict:   {Requests: 1, Window: time.Minute},
		ClassOps:       {Requests: 1, Window: time.Minute},
	}
	m := NewChiMiddleware(&ChiMiddlewareConfig{Limits: limits, RateLimitDisabled: true})
	for class := range limits {
		handler := m.Limit(class)(okHandler())
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d, want 200", i, w.Code)
			}
		}
	}
}

func TestChiMiddleware_LimitSharedAcrossMounts(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		Limits: map[RouteClass]Limit{ClassPredict: {Requests: 1, Window: time.Minute}},
	})
	first := m.Limit(ClassPredict)(okHandler())
	second := m.Limit(ClassPredict)(okHandler())

	codes := make([]int, 0, 2)
	for _, h := range []http.Handler{first, second} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.9:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}

	// No budget for the class means no limiting.
	open := m.Limit(ClassOps)(okHandler())
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("ops request %d: status = %d", i, w.Code)
		}
	}
}
