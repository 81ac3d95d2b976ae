// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("recommend", "POST", "/recommend/by-title", "404"))

	RecordHTTPRequest("recommend", "POST", "/recommend/by-title", 404, 3*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("recommend", "POST", "/recommend/by-title", "404"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}

	var m io_prometheus_client.Metric
	obs, ok := HTTPRequestDuration.WithLabelValues("recommend", "POST", "/recommend/by-title").(interface {
		Write(*io_prometheus_client.Metric) error
	})
	if !ok {
		t.Fatal("histogram does not expose Write")
	}
	if err := obs.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Error("expected at least one duration sample")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	TrackActiveRequest("emotion", true)
	TrackActiveRequest("emotion", true)
	TrackActiveRequest("emotion", false)

	if got := testutil.ToFloat64(HTTPActiveRequests.WithLabelValues("emotion")); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	TrackActiveRequest("emotion", false)
}

func TestRecordModelBuild(t *testing.T) {
	RecordModelBuild(120, 14, []int{50, 70}, 2*time.Second)

	if got := testutil.ToFloat64(RecommendCatalogSongs); got != 120 {
		t.Errorf("songs = %v", got)
	}
	if got := testutil.ToFloat64(RecommendClusterSize.WithLabelValues("1")); got != 70 {
		t.Errorf("cluster 1 size = %v", got)
	}

	RecordModelBuild(10, 3, []int{10}, time.Second)
	if got := testutil.CollectAndCount(RecommendClusterSize); got != 1 {
		t.Errorf("cluster series after rebuild = %d, want 1", got)
	}
}

func TestEmotionMetrics(t *testing.T) {
	SetModelLoaded(true)
	if testutil.ToFloat64(EmotionModelLoaded) != 1 {
		t.Error("model loaded gauge not set")
	}
	SetModelLoaded(false)
	if testutil.ToFloat64(EmotionModelLoaded) != 0 {
		t.Error("model loaded gauge not cleared")
	}

	before := testutil.ToFloat64(EmotionPredictions.WithLabelValues("happy"))
	RecordPrediction("happy", 5*time.Millisecond)
	if testutil.ToFloat64(EmotionPredictions.WithLabelValues("happy"))-before != 1 {
		t.Error("prediction counter not incremented")
	}

	before = testutil.ToFloat64(EmotionFailures.WithLabelValues("DECODE_ERROR"))
	RecordPredictionFailure("DECODE_ERROR")
	if testutil.ToFloat64(EmotionFailures.WithLabelValues("DECODE_ERROR"))-before != 1 {
		t.Error("failure counter not incremented")
	}
}

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(RecommendCacheRequests.WithLabelValues("hit"))
	RecordCacheLookup("hit")
	if testutil.ToFloat64(RecommendCacheRequests.WithLabelValues("hit"))-before != 1 {
		t.Error("cache hit not counted")
	}
}
