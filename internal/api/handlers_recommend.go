// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"

	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/recommend"
)

// RecommendHandler serves the song recommendation endpoints.
type RecommendHandler struct {
	engine *recommend.Engine
}

// NewRecommendHandler creates the handler around a built engine.
func NewRecommendHandler(engine *recommend.Engine) *RecommendHandler {
	return &RecommendHandler{engine: engine}
}

// Ready reports whether the engine is available. The model is built before
// the listener starts, so this only fails for a nil engine.
func (h *RecommendHandler) Ready() bool {
	return h.engine != nil
}

func (h *RecommendHandler) n(v *int) int {
	if v == nil {
		return h.engine.Config().Limits.DefaultK
	}
	return *v
}

// ByTitle handles POST /recommend/by-title.
func (h *RecommendHandler) ByTitle(w http.ResponseWriter, r *http.Request) {
	var req ByTitleRequest
	if verr := decodeJSON(w, r, &req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("title", *req.Title).Msg("recommend by title")
	resp, err := h.engine.ByTitle(r.Context(), *req.Title, h.n(req.N))
	if err != nil {
		respondFault(w, r, err, recommendStatus)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// ByTrackID handles POST /recommend/by-track-id.
func (h *RecommendHandler) ByTrackID(w http.ResponseWriter, r *http.Request) {
	var req ByTrackIDRequest
	if verr := decodeJSON(w, r, &req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("track_id", *req.TrackID).Msg("recommend by track id")
	resp, err := h.engine.ByTrackID(r.Context(), *req.TrackID, h.n(req.N))
	if err != nil {
		respondFault(w, r, err, recommendStatus)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// FromMultiple handles POST /recommend/from-multiple.
func (h *RecommendHandler) FromMultiple(w http.ResponseWriter, r *http.Request) {
	var req FromMultipleRequest
	if verr := decodeJSON(w, r, &req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	logging.Ctx(r.Context()).Debug().Strs("titles", req.Titles).Msg("recommend from multiple")
	resp, err := h.engine.FromMultiple(r.Context(), req.Titles, h.n(req.N))
	if err != nil {
		respondFault(w, r, err, recommendStatus)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// Stats handles GET /recommend/stats.
func (h *RecommendHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.engine.Stats())
}
