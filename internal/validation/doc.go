// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package validation validates decoded request bodies with go-playground/validator v10.
//
// A single validator instance is shared by all handlers; it caches struct
// metadata and reports field names from json tags. Failures convert to the
// FastAPI-style detail list that the recommendation clients already parse:
//
//	[{"loc": ["body", "n"], "msg": "Input should be less than or equal to 100", "type": "less_than_equal"}]
//
// # Quick Start
//
//	type ByTitleRequest struct {
//	    Title *string `json:"title" validate:"required"`
//	    N     *int    `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // 422 with verr.Details()
//	}
//
// Pointer fields keep "absent" distinct from the zero value: a missing title
// fails "required" while an empty string passes and is looked up as usual.
// NewBodyError covers bodies that do not decode at all.
package validation
