// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/goccy/go-json"

	"github.com/echonova/echonova-ml/internal/recommend"
)

// EmotionPrediction is the emotion service's answer for one image.
type EmotionPrediction struct {
	Filename       string             `json:"filename"`
	PredictedLabel string             `json:"predicted_label"`
	PredictedIndex int                `json:"predicted_index"`
	Probabilities  map[string]float64 `json:"probabilities"`
	Classes        []string           `json:"classes"`
}

// PredictEmotion uploads image as the multipart field "file".
func (c *Client) PredictEmotion(ctx context.Context, filename string, image io.Reader) (*EmotionPrediction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	var out EmotionPrediction
	if err := c.do(ctx, c.emotion, "/emotion/predict", mw.FormDataContentType(), buf.Bytes(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecommendByTitle asks for n songs similar to title. n <= 0 leaves the
// count to the server default.
func (c *Client) RecommendByTitle(ctx context.Context, title string, n int) (*recommend.Response, error) {
	return c.recommendCall(ctx, "/recommend/by-title", map[string]any{"title": title}, n)
}

// RecommendByTrackID asks for n songs similar to the song with trackID.
func (c *Client) RecommendByTrackID(ctx context.Context, trackID string, n int) (*recommend.Response, error) {
	return c.recommendCall(ctx, "/recommend/by-track-id", map[string]any{"track_id": trackID}, n)
}

// RecommendFromMultiple asks for n songs near the combined profile of titles.
func (c *Client) RecommendFromMultiple(ctx context.Context, titles []string, n int) (*recommend.Response, error) {
	if titles == nil {
		titles = []string{}
	}
	return c.recommendCall(ctx, "/recommend/from-multiple", map[string]any{"titles": titles}, n)
}

func (c *Client) recommendCall(ctx context.Context, path string, body map[string]any, n int) (*recommend.Response, error) {
	if n > 0 {
		body["n"] = n
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var out recommend.Response
	if err := c.do(ctx, c.recommend, path, "application/json", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
