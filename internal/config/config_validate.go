// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if !c.Emotion.Enabled && !c.Recommend.Enabled {
		return errors.New("at least one of EMOTION_ENABLED or RECOMMEND_ENABLED must be true")
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEmotion(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateClient(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validEnvironments = map[string]bool{
	"development": true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, production")
	}
	if c.Emotion.Enabled && c.Server.EmotionAddr == "" {
		return fmt.Errorf("EMOTION_ADDR is required when EMOTION_ENABLED=true")
	}
	if c.Recommend.Enabled && c.Server.RecommendAddr == "" {
		return fmt.Errorf("RECOMMEND_ADDR is required when RECOMMEND_ENABLED=true")
	}
	if c.Emotion.Enabled && c.Recommend.Enabled && c.Server.EmotionAddr == c.Server.RecommendAddr {
		return fmt.Errorf("EMOTION_ADDR and RECOMMEND_ADDR must differ, both are %s", c.Server.EmotionAddr)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateEmotion() error {
	if !c.Emotion.Enabled {
		return nil
	}
	if c.Emotion.ModelPath == "" || c.Emotion.WeightsPath == "" {
		return fmt.Errorf("EMOTION_MODEL_PATH and EMOTION_WEIGHTS_PATH are required when EMOTION_ENABLED=true")
	}
	if c.Emotion.MaxUploadBytes <= 0 {
		return fmt.Errorf("EMOTION_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// maxRecommendN matches the upper bound on n accepted by the request schema.
const maxRecommendN = 100

func (c *Config) validateRecommend() error {
	if !c.Recommend.Enabled {
		return nil
	}
	r := c.Recommend
	if r.CatalogPath == "" {
		return fmt.Errorf("SONGS_CATALOG_PATH is required when RECOMMEND_ENABLED=true")
	}
	if r.Clusters < 1 {
		return fmt.Errorf("RECOMMEND_CLUSTERS must be positive, got %d", r.Clusters)
	}
	if r.NInit < 1 || r.MaxIterations < 1 {
		return fmt.Errorf("RECOMMEND_N_INIT and RECOMMEND_MAX_ITERATIONS must be positive")
	}
	if r.Tolerance < 0 {
		return fmt.Errorf("RECOMMEND_TOLERANCE must be non-negative, got %g", r.Tolerance)
	}
	if r.PoolSize < 1 {
		return fmt.Errorf("RECOMMEND_POOL_SIZE must be positive, got %d", r.PoolSize)
	}
	if r.ListColumnSample < 0 {
		return fmt.Errorf("RECOMMEND_LIST_COLUMN_SAMPLE must be non-negative, got %d", r.ListColumnSample)
	}
	if r.DefaultN < 1 || r.DefaultN > r.MaxN {
		return fmt.Errorf("RECOMMEND_DEFAULT_N must be between 1 and RECOMMEND_MAX_N (%d), got %d", r.MaxN, r.DefaultN)
	}
	if r.MaxN > maxRecommendN {
		return fmt.Errorf("RECOMMEND_MAX_N must not exceed %d, got %d", maxRecommendN, r.MaxN)
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive when the cache is enabled")
	}
	if c.Cache.Path != "" && c.Cache.GCInterval <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_GC_INTERVAL must be positive for an on-disk cache")
	}
	if c.Cache.DiscardRatio <= 0 || c.Cache.DiscardRatio >= 1 {
		return fmt.Errorf("RECOMMEND_CACHE_DISCARD_RATIO must be in (0, 1), got %g", c.Cache.DiscardRatio)
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard origin in production, which is
// logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && slices.Contains(c.Security.CORSOrigins, "*")
}

func (c *Config) validateClient() error {
	if c.Client.EmotionURL != "" {
		if err := validateHTTPURL(c.Client.EmotionURL, "EMOTION_SERVICE_URL"); err != nil {
			return err
		}
	}
	if c.Client.RecommendURL != "" {
		if err := validateHTTPURL(c.Client.RecommendURL, "RECOMMEND_SERVICE_URL"); err != nil {
			return err
		}
	}
	if c.Client.RatePerSecond < 0 {
		return fmt.Errorf("CLIENT_RATE_PER_SEC must be non-negative, got %g", c.Client.RatePerSecond)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
