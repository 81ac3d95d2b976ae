// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ValueLogCollector is implemented by caches that need periodic value-log
// garbage collection, such as recommend.BadgerCache.
type ValueLogCollector interface {
	RunGC(discardRatio float64) error
}

// CacheGCServiceConfig holds configuration for the cache GC service.
type CacheGCServiceConfig struct {
	// Interval between GC passes. Default: 5m.
	Interval time.Duration

	// DiscardRatio is passed to badger's RunValueLogGC. Default: 0.5.
	DiscardRatio float64
}

// CacheGCService periodically reclaims space in an on-disk result cache.
// GC errors are logged and retried on the next tick; they never stop the
// service.
type CacheGCService struct {
	cache  ValueLogCollector
	config CacheGCServiceConfig
	logger zerolog.Logger
	name   string
}

// NewCacheGCService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewCacheGCService(cache ValueLogCollector, cfg CacheGCServiceConfig, logger zerolog.Logger) *CacheGCService {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.DiscardRatio <= 0 || cfg.DiscardRatio >= 1 {
		cfg.DiscardRatio = 0.5
	}
	return &CacheGCService{
		cache:  cache,
		config: cfg,
		logger: logger.With().Str("service", "cache-gc").Logger(),
		name:   "cache-gc",
	}
}

// Serve implements suture.Service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.config.Interval).Msg("cache GC service starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.cache.RunGC(s.config.DiscardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture event logs.
func (s *CacheGCService) String() string {
	return s.name
}
