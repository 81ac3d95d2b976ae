// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/echonova/echonova-ml/internal/logging"
)

func newTestClient(t *testing.T, emotionURL, recommendURL string, breaker BreakerConfig) *Client {
	t.Helper()
	c, err := New(Config{
		EmotionURL:   emotionURL,
		RecommendURL: recommendURL,
		Timeout:      2 * time.Second,
		Breaker:      breaker,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestPredictEmotion(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotFile []byte
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.URL.Path != "/emotion/predict" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "no file"})
			return
		}
		defer f.Close()
		gotFile, _ = io.ReadAll(f)
		gotName = hdr.Filename
		writeJSON(w, http.StatusOK, map[string]any{
			"filename":        hdr.Filename,
			"predicted_label": "sad",
			"predicted_index": 5,
			"probabilities":   map[string]float64{"sad": 0.9, "happy": 0.1},
			"classes":         []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", BreakerConfig{})
	pred, err := c.PredictEmotion(context.Background(), "me.jpg", bytes.NewReader([]byte("jpeg-bytes")))
	if err != nil {
		t.Fatalf("PredictEmotion: %v", err)
	}
	if pred.PredictedLabel != "sad" || pred.PredictedIndex != 5 || len(pred.Classes) != 7 {
		t.Errorf("prediction = %+v", pred)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotName != "me.jpg" || string(gotFile) != "jpeg-bytes" {
		t.Errorf("server saw %q with %q", gotName, gotFile)
	}
}

func TestRecommendCalls(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var lastBody map[string]any
	var lastPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastPath = r.URL.Path
		lastBody = nil
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{{
			"$oid": "abc", "track_id": "trk-1", "title": "Other", "artist": "A",
			"genre": []string{"jazz"}, "similarity_score": 0.93,
		}}})
	}))
	defer srv.Close()

	c := newTestClient(t, "", srv.URL, BreakerConfig{})
	ctx := context.Background()
	seen := func() (string, map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		return lastPath, lastBody
	}

	resp, err := c.RecommendByTitle(ctx, "Blue in Green", 3)
	if err != nil {
		t.Fatal(err)
	}
	path, body := seen()
	if path != "/recommend/by-title" || body["title"] != "Blue in Green" || body["n"] != float64(3) {
		t.Errorf("by-title sent %s %v", path, body)
	}
	if len(resp.Items) != 1 || resp.Items[0].TrackID != "trk-1" || resp.Items[0].OID == nil || *resp.Items[0].OID != "abc" {
		t.Errorf("items = %+v", resp.Items)
	}

	if _, err := c.RecommendByTrackID(ctx, "trk-9", 0); err != nil {
		t.Fatal(err)
	}
	path, body = seen()
	if path != "/recommend/by-track-id" || body["track_id"] != "trk-9" {
		t.Errorf("by-track-id sent %s %v", path, body)
	}
	if _, ok := body["n"]; ok {
		t.Errorf("n sent although not set: %v", body)
	}

	if _, err := c.RecommendFromMultiple(ctx, nil, 2); err != nil {
		t.Fatal(err)
	}
	_, body = seen()
	if titles, ok := body["titles"].([]any); !ok || len(titles) != 0 {
		t.Errorf("from-multiple titles = %v", body["titles"])
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantDetail string
		wantFields int
	}{
		{
			name:       "string detail",
			status:     http.StatusNotFound,
			body:       `{"detail":"Song 'x' not found in the dataset","code":"NOT_FOUND","request_id":"r1"}`,
			wantCode:   "NOT_FOUND",
			wantDetail: "Song 'x' not found in the dataset",
		},
		{
			name:       "validation list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","n"],"msg":"Input should be less than or equal to 100","type":"less_than_equal"}],"code":"VALIDATION_FAILED"}`,
			wantCode:   "VALIDATION_FAILED",
			wantDetail: "body.n: Input should be less than or equal to 100",
			wantFields: 1,
		},
		{
			name:       "not json",
			status:     http.StatusBadGateway,
			body:       `upstream down`,
			wantDetail: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, "", srv.URL, BreakerConfig{})
			_, err := c.RecommendByTitle(context.Background(), "x", 1)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Code != tt.wantCode || apiErr.Detail != tt.wantDetail {
				t.Errorf("APIError = %+v", apiErr)
			}
			if len(apiErr.Fields) != tt.wantFields {
				t.Errorf("fields = %+v", apiErr.Fields)
			}
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}

	t.Run("opens on server errors", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "boom", "code": "INTERNAL_ERROR"})
		}))
		defer srv.Close()

		c := newTestClient(t, "", srv.URL, breaker)
		for i := 0; i < 3; i++ {
			_, _ = c.RecommendByTitle(context.Background(), "x", 1)
		}
		_, err := c.RecommendByTitle(context.Background(), "x", 1)
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("err = %v, want open circuit", err)
		}
		if got := hits.Load(); got != 3 {
			t.Errorf("server hits = %d, want 3", got)
		}
	})

	t.Run("client errors keep it closed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Song 'x' not found in the dataset", "code": "NOT_FOUND"})
		}))
		defer srv.Close()

		c := newTestClient(t, "", srv.URL, breaker)
		for i := 0; i < 6; i++ {
			_, err := c.RecommendByTitle(context.Background(), "x", 1)
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
				t.Fatalf("call %d: err = %v", i, err)
			}
		}
	})
}

func TestRequestIDForwarded(t *testing.T) {
	t.Parallel()

	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, "", srv.URL, BreakerConfig{})
	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	if _, err := c.RecommendByTitle(ctx, "x", 1); err != nil {
		t.Fatal(err)
	}
	if id := <-got; id != "req-42" {
		t.Errorf("X-Request-ID = %q", id)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Error("New with no URLs should fail")
	}

	c := newTestClient(t, "http://localhost:8000/", "", BreakerConfig{})
	if c.emotion.baseURL != "http://localhost:8000" {
		t.Errorf("baseURL = %q", c.emotion.baseURL)
	}
	if _, err := c.RecommendByTitle(context.Background(), "x", 1); err == nil {
		t.Error("call to unconfigured service should fail")
	}
}
