// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/echonova/echonova-ml/internal/emotion"
	"github.com/echonova/echonova-ml/internal/validation"
)

// DefaultMaxUploadBytes bounds image uploads when nothing is configured.
const DefaultMaxUploadBytes = 10 << 20

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 1 << 20

// EmotionHandler serves the facial emotion endpoints.
type EmotionHandler struct {
	classifier     *emotion.Classifier
	maxUploadBytes int64
}

// NewEmotionHandler creates the handler. maxUploadBytes <= 0 selects DefaultMaxUploadBytes.
func NewEmotionHandler(classifier *emotion.Classifier, maxUploadBytes int64) *EmotionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &EmotionHandler{classifier: classifier, maxUploadBytes: maxUploadBytes}
}

// Ready reports whether the network is loaded.
func (h *EmotionHandler) Ready() bool {
	return h.classifier.Loaded()
}

// Predict handles POST /emotion/predict with a multipart "file" field.
func (h *EmotionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	// Multipart framing needs a little room on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
				fmt.Sprintf("Uploaded file exceeds %d bytes", h.maxUploadBytes))
			return
		}
		respondValidationError(w, r, validation.NewBodyError("file", "Field required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondValidationError(w, r, validation.NewBodyError("file", "Could not read upload"))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			fmt.Sprintf("Uploaded file exceeds %d bytes", h.maxUploadBytes))
		return
	}

	pred, err := h.classifier.Classify(r.Context(), data)
	if err != nil {
		respondFault(w, r, err, emotionStatus)
		return
	}

	respondJSON(w, r, http.StatusOK, &EmotionResponse{
		Filename:       header.Filename,
		PredictedLabel: pred.Label,
		PredictedIndex: pred.Index,
		Probabilities:  pred.Probabilities,
		Classes:        pred.Classes,
	})
}
