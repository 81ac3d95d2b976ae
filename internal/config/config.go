// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Emotion   EmotionConfig   `koanf:"emotion"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Client    ClientConfig    `koanf:"client"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds listener settings shared by both services.
type ServerConfig struct {
	EmotionAddr     string        `koanf:"emotion_addr"`
	RecommendAddr   string        `koanf:"recommend_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// SlowRequest is the latency above which requests are logged at warn.
	SlowRequest time.Duration `koanf:"slow_request"`
	Environment string        `koanf:"environment"` // development or production
}

// EmotionConfig holds facial emotion service settings.
type EmotionConfig struct {
	Enabled        bool   `koanf:"enabled"`
	ModelPath      string `koanf:"model_path"`
	WeightsPath    string `koanf:"weights_path"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
	// RequireModel makes a missing model fatal at startup instead of
	// answering 500 per request until the artifacts appear.
	RequireModel bool `koanf:"require_model"`
}

// RecommendConfig holds song recommendation settings.
type RecommendConfig struct {
	Enabled          bool    `koanf:"enabled"`
	CatalogPath      string  `koanf:"catalog_path"`
	Clusters         int     `koanf:"clusters"`
	Seed             int64   `koanf:"seed"`
	NInit            int     `koanf:"n_init"`
	MaxIterations    int     `koanf:"max_iterations"`
	Tolerance        float64 `koanf:"tolerance"`
	Workers          int     `koanf:"workers"`
	PoolSize         int     `koanf:"pool_size"`
	ListColumnSample int     `koanf:"list_column_sample"` // 0 scans every value
	DefaultN         int     `koanf:"default_n"`
	MaxN             int     `koanf:"max_n"`
}

// CacheConfig holds the recommendation result cache settings.
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`
	// Path keeps the cache on disk; empty means in memory.
	Path         string        `koanf:"path"`
	TTL          time.Duration `koanf:"ttl"`
	GCInterval   time.Duration `koanf:"gc_interval"`
	DiscardRatio float64       `koanf:"discard_ratio"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ClientConfig holds settings for callers of the services (internal/client).
type ClientConfig struct {
	EmotionURL    string        `koanf:"emotion_url"`
	RecommendURL  string        `koanf:"recommend_url"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs with production checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
