// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health probes.
type HealthStatus struct {
	Service string  `json:"service"`
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime_seconds"`
}

// Health serves Kubernetes-style liveness and readiness probes for one listener.
type Health struct {
	service   string
	startTime time.Time
	ready     func() bool
}

// NewHealth creates probes for service. A nil ready func always reports ready.
func NewHealth(service string, ready func() bool) *Health {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &Health{service: service, startTime: time.Now(), ready: ready}
}

// Live returns 200 while the process is serving, regardless of dependencies.
func (h *Health) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &HealthStatus{
		Service: h.service,
		Status:  "alive",
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// Ready returns 200 once the model is usable and 503 before that.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready() {
		respondError(w, r, http.StatusServiceUnavailable, codeNotReady, "Model not loaded")
		return
	}
	respondJSON(w, r, http.StatusOK, &HealthStatus{
		Service: h.service,
		Status:  "ready",
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}
