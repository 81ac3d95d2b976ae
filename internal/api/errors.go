// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/recommend"
)

// statusClientClosed is logged when the caller went away before the response.
const statusClientClosed = 499

// emotionStatus maps a classifier failure to an HTTP status. Only missing
// model artifacts are server errors; everything else is blamed on the upload.
func emotionStatus(err error) int {
	switch {
	case errors.Is(err, faults.ErrModelUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusBadRequest
	}
}

// recommendStatus maps a query failure to an HTTP status.
func recommendStatus(err error) int {
	var fe *faults.Error
	switch {
	case errors.As(err, &fe) && fe == recommend.ErrNoTitles:
		return http.StatusNotFound
	case errors.Is(err, faults.ErrNotFound), errors.Is(err, faults.ErrNoSameCluster):
		return http.StatusNotFound
	case errors.Is(err, faults.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	default:
		return http.StatusInternalServerError
	}
}

// respondFault writes err with the status chosen by statusOf. Server errors
// are logged with the full cause; the body only carries the classified message.
func respondFault(w http.ResponseWriter, r *http.Request, err error, statusOf func(error) int) {
	status := statusOf(err)
	code := faults.CodeOf(err)

	logger := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", string(code)).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Str("code", string(code)).Int("status", status).Msg("Request rejected")
	}

	if status == statusClientClosed {
		return
	}
	detail := "Internal Server Error"
	var fe *faults.Error
	if errors.As(err, &fe) {
		detail = fe.Message
	}
	respondError(w, r, status, string(code), detail)
}
