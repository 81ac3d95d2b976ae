// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouteClass groups routes that share a request budget.
type RouteClass int

const (
	// ClassRecommend covers the JSON recommendation queries.
	ClassRecommend RouteClass = iota
	// ClassPredict covers image uploads, which decode and run the network.
	ClassPredict
	// ClassOps covers health probes and metric scrapes.
	ClassOps
)

func (c RouteClass) String() string {
	switch c {
	case ClassRecommend:
		return "recommend"
	case ClassPredict:
		return "predict"
	case ClassOps:
		return "ops"
	default:
		return "unknown"
	}
}

// Limit is a per-client budget of Requests per Window. Requests <= 0 means
// unlimited.
type Limit struct {
	Requests int
	Window   time.Duration
}

// ChiMiddlewareConfig configures the CORS handler and the per-class limiters.
type ChiMiddlewareConfig struct {
	CORS cors.Options

	Limits            map[RouteClass]Limit
	RateLimitDisabled bool
	// KeyFunc identifies a client. Default: httprate.KeyByIP.
	KeyFunc httprate.KeyFunc
}

// DefaultChiMiddlewareConfig allows no cross-origin callers until origins
// are configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORS: cors.Options{
			AllowedOrigins: []string{},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         86400,
		},
		Limits: map[RouteClass]Limit{
			ClassRecommend: {Requests: 100, Window: time.Minute},
			ClassPredict:   {Requests: 60, Window: time.Minute},
			ClassOps:       {Requests: 1000, Window: time.Minute},
		},
	}
}

// ChiMiddleware hands out the CORS handler and one limiter per RouteClass.
// Limiters are built once so routes mounted under the same class share
// counters.
type ChiMiddleware struct {
	config   *ChiMiddlewareConfig
	cors     func(http.Handler) http.Handler
	limiters map[RouteClass]func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware set. A nil config takes
// DefaultChiMiddlewareConfig.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	m := &ChiMiddleware{
		config:   config,
		cors:     cors.Handler(config.CORS),
		limiters: make(map[RouteClass]func(http.Handler) http.Handler, len(config.Limits)),
	}
	for class, limit := range config.Limits {
		if config.RateLimitDisabled || limit.Requests <= 0 {
			continue
		}
		m.limiters[class] = m.newLimiter(limit)
	}
	return m
}

func (m *ChiMiddleware) newLimiter(limit Limit) func(http.Handler) http.Handler {
	keyFunc := m.config.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	return httprate.Limit(limit.Requests, limit.Window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, codeTooManyRequests, "Too many requests")
		}),
	)
}

// CORS returns the go-chi/cors handler. Mount it globally so preflight
// requests reach it before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// Limit returns the limiter for class, or a pass-through when limiting is
// disabled or the class has no budget.
func (m *ChiMiddleware) Limit(class RouteClass) func(http.Handler) http.Handler {
	if l, ok := m.limiters[class]; ok {
		return l
	}
	return passThrough
}

func passThrough(next http.Handler) http.Handler { return next }
