// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/echonova/echonova-ml/internal/validation"
)

// maxJSONBody bounds recommendation request bodies.
const maxJSONBody = 1 << 20

// ByTitleRequest is the body of POST /recommend/by-title.
// Title is a pointer so a missing field is distinguishable from "".
type ByTitleRequest struct {
	Title *string `json:"title" validate:"required"`
	N     *int    `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
}

// ByTrackIDRequest is the body of POST /recommend/by-track-id.
type ByTrackIDRequest struct {
	TrackID *string `json:"track_id" validate:"required"`
	N       *int    `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
}

// FromMultipleRequest is the body of POST /recommend/from-multiple. An empty
// list passes validation and is rejected by the engine with a 400.
type FromMultipleRequest struct {
	Titles []string `json:"titles" validate:"required"`
	N      *int     `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
}

// EmotionResponse is the body of a successful POST /emotion/predict.
type EmotionResponse struct {
	Filename       string             `json:"filename"`
	PredictedLabel string             `json:"predicted_label"`
	PredictedIndex int                `json:"predicted_index"`
	Probabilities  map[string]float64 `json:"probabilities"`
	Classes        []string           `json:"classes"`
}

// decodeJSON decodes and validates a request body. Any failure is reported
// as a validation error so the caller answers 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *validation.RequestValidationError {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return bodyError(err)
	}
	return validation.ValidateStruct(dst)
}

func bodyError(err error) *validation.RequestValidationError {
	var typeErr *json.UnmarshalTypeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return validation.NewBodyError("", "Field required")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		kind := "value"
		if typeErr.Type != nil {
			kind = jsonKind(typeErr.Type.Kind().String())
		}
		return validation.NewBodyError(field, "Input should be a valid "+kind)
	case errors.As(err, &tooLarge):
		return validation.NewBodyError("", "Request body too large")
	default:
		return validation.NewBodyError("", "JSON decode error")
	}
}

func jsonKind(kind string) string {
	switch kind {
	case "int", "int64", "int32":
		return "integer"
	case "slice", "array":
		return "list"
	case "ptr":
		return "value"
	default:
		return kind
	}
}
