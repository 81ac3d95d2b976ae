// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeCollector struct {
	mu     sync.Mutex
	calls  int
	ratios []float64
	err    error
}

func (f *fakeCollector) RunGC(discardRatio float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ratios = append(f.ratios, discardRatio)
	return f.err
}

func (f *fakeCollector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewCacheGCService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewCacheGCService(&fakeCollector{}, CacheGCServiceConfig{DiscardRatio: 3}, zerolog.Nop())
	if svc.config.Interval != 5*time.Minute {
		t.Errorf("Interval = %v, want 5m", svc.config.Interval)
	}
	if svc.config.DiscardRatio != 0.5 {
		t.Errorf("DiscardRatio = %v, want 0.5", svc.config.DiscardRatio)
	}
	if svc.String() != "cache-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestCacheGCService_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	cache := &fakeCollector{}
	svc := NewCacheGCService(cache, CacheGCServiceConfig{Interval: 20 * time.Millisecond, DiscardRatio: 0.7}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	if got := cache.count(); got < 2 {
		t.Errorf("RunGC calls = %d, want >= 2", got)
	}
	if cache.ratios[0] != 0.7 {
		t.Errorf("discard ratio = %v, want 0.7", cache.ratios[0])
	}
}

func TestCacheGCService_SurvivesErrors(t *testing.T) {
	t.Parallel()

	cache := &fakeCollector{err: errors.New("disk full")}
	svc := NewCacheGCService(cache, CacheGCServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v", err)
	}
	if got := cache.count(); got < 2 {
		t.Errorf("RunGC calls = %d, want >= 2 despite errors", got)
	}
}
