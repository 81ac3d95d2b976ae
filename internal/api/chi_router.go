// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/echonova/echonova-ml/internal/middleware"
)

// Service names used as the "service" metric label and in health bodies.
const (
	ServiceEmotion   = "emotion"
	ServiceRecommend = "recommend"
)

// RouterOptions configures what is shared by both routers.
type RouterOptions struct {
	Middleware  *ChiMiddleware
	SlowRequest time.Duration
}

func (o *RouterOptions) defaults() {
	if o.Middleware == nil {
		o.Middleware = NewChiMiddleware(nil)
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = middleware.DefaultSlowRequest
	}
}

// newBaseRouter applies the global middleware stack and the ops routes.
func newBaseRouter(service string, opts *RouterOptions, ready func() bool) chi.Router {
	opts.defaults()
	health := NewHealth(service, ready)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ServiceLogger(service))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(opts.Middleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics(service))
	r.Use(middleware.AccessLog(opts.SlowRequest))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(opts.Middleware.Limit(ClassOps))
		r.Get("/health/live", health.Live)
		r.Get("/health/ready", health.Ready)
		r.Handle("/metrics", promhttp.Handler())
	})
	return r
}

// NewEmotionRouter builds the handler for the emotion listener.
func NewEmotionRouter(h *EmotionHandler, opts RouterOptions) http.Handler {
	r := newBaseRouter(ServiceEmotion, &opts, h.Ready)

	r.Route("/emotion", func(r chi.Router) {
		r.Use(opts.Middleware.Limit(ClassPredict))
		r.Post("/predict", h.Predict)
	})
	return r
}

// NewRecommendRouter builds the handler for the recommend listener.
func NewRecommendRouter(h *RecommendHandler, opts RouterOptions) http.Handler {
	r := newBaseRouter(ServiceRecommend, &opts, h.Ready)

	r.Route("/recommend", func(r chi.Router) {
		r.Use(opts.Middleware.Limit(ClassRecommend))
		r.Use(chimiddleware.Compress(5, "application/json"))
		r.Post("/by-title", h.ByTitle)
		r.Post("/by-track-id", h.ByTrackID)
		r.Post("/from-multiple", h.FromMultiple)
		r.Get("/stats", h.Stats)
	})
	return r
}
