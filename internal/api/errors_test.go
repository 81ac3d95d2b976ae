// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/recommend"
)

func TestStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		emotion int
		recomm  int
	}{
		{"decode", faults.New(faults.CodeDecode, "cannot identify image file"), http.StatusBadRequest, http.StatusInternalServerError},
		{"model unavailable", faults.New(faults.CodeModelUnavailable, "missing"), http.StatusInternalServerError, http.StatusInternalServerError},
		{"shape", faults.New(faults.CodeInferenceShape, "bad"), http.StatusBadRequest, http.StatusInternalServerError},
		{"not found", faults.New(faults.CodeNotFound, "x"), http.StatusBadRequest, http.StatusNotFound},
		{"no same cluster", faults.New(faults.CodeNoSameCluster, "x"), http.StatusBadRequest, http.StatusNotFound},
		{"invalid query", faults.New(faults.CodeInvalidQuery, "x"), http.StatusBadRequest, http.StatusBadRequest},
		{"no titles", recommend.ErrNoTitles, http.StatusBadRequest, http.StatusNotFound},
		{"wrapped no titles", fmt.Errorf("query: %w", recommend.ErrNoTitles), http.StatusBadRequest, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", faults.New(faults.CodeNotFound, "x")), http.StatusBadRequest, http.StatusNotFound},
		{"canceled", context.Canceled, statusClientClosed, statusClientClosed},
		{"plain", errors.New("boom"), http.StatusBadRequest, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := emotionStatus(tt.err); got != tt.emotion {
				t.Errorf("emotionStatus = %d, want %d", got, tt.emotion)
			}
			if got := recommendStatus(tt.err); got != tt.recomm {
				t.Errorf("recommendStatus = %d, want %d", got, tt.recomm)
			}
		})
	}
}

func TestRespondFault_HidesInternalCause(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/recommend/by-title", nil)
	respondFault(w, r, errors.New("index: pool exhausted at /srv/data"), recommendStatus)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "/srv/data") {
		t.Errorf("body leaks cause: %s", body)
	}
	if !strings.Contains(body, `"detail":"Internal Server Error"`) {
		t.Errorf("body = %s", body)
	}
}

func TestRespondFault_ClientGone(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/recommend/by-title", nil)
	respondFault(w, r, context.Canceled, recommendStatus)

	if w.Body.Len() != 0 {
		t.Errorf("wrote %q for a canceled request", w.Body.String())
	}
}
