// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/validation"
)

// Error codes that do not come from a service fault.
const (
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeTooManyRequests  = "TOO_MANY_REQUESTS"
	codePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	codeValidation       = "VALIDATION_FAILED"
	codeNotReady         = "NOT_READY"
)

// ErrorResponse is the body of every non-2xx response. Detail is a string,
// or a list of validation.FieldDetail for 422 responses, matching what
// FastAPI clients expect under "detail".
type ErrorResponse struct {
	Detail    any    `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, status int, code string, detail any) {
	respondJSON(w, r, status, &ErrorResponse{
		Detail:    detail,
		Code:      code,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// respondValidationError writes a 422 with FastAPI-style details.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	respondError(w, r, http.StatusUnprocessableEntity, codeValidation, verr.Details())
}

// notFound and methodNotAllowed replace chi's plain-text defaults.
func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, codeNotFound, "Not Found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method Not Allowed")
}
