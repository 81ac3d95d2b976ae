// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/echonova/config.yaml",
	"/etc/echonova/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			EmotionAddr:     ":8000",
			RecommendAddr:   ":8001",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			SlowRequest:     time.Second,
			Environment:     "development",
		},
		Emotion: EmotionConfig{
			Enabled:        true,
			ModelPath:      "models/emotion/model.json",
			WeightsPath:    "models/emotion/model.safetensors",
			MaxUploadBytes: 10 << 20,
			RequireModel:   false,
		},
		Recommend: RecommendConfig{
			Enabled:          true,
			CatalogPath:      "data/songs.json",
			Clusters:         40,
			Seed:             42,
			NInit:            1,
			MaxIterations:    300,
			Tolerance:        1e-4,
			Workers:          4,
			PoolSize:         100,
			ListColumnSample: 100,
			DefaultN:         5,
			MaxN:             100,
		},
		Cache: CacheConfig{
			Enabled:      true,
			Path:         "",
			TTL:          10 * time.Minute,
			GCInterval:   5 * time.Minute,
			DiscardRatio: 0.5,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Client: ClientConfig{
			EmotionURL:    "http://localhost:8000",
			RecommendURL:  "http://localhost:8001",
			Timeout:       30 * time.Second,
			RatePerSecond: 20,
			Burst:         10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from three layers, later ones winning:
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH, then DefaultConfigPaths)
//  3. environment variables listed in envMappings
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single string.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	// Server
	"emotion_addr":     "server.emotion_addr",
	"recommend_addr":   "server.recommend_addr",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"slow_request":     "server.slow_request",
	"environment":      "server.environment",

	// Emotion
	"emotion_enabled":          "emotion.enabled",
	"emotion_model_path":       "emotion.model_path",
	"emotion_weights_path":     "emotion.weights_path",
	"emotion_max_upload_bytes": "emotion.max_upload_bytes",
	"emotion_require_model":    "emotion.require_model",

	// Recommend
	"recommend_enabled":            "recommend.enabled",
	"songs_catalog_path":           "recommend.catalog_path",
	"recommend_catalog_path":       "recommend.catalog_path",
	"recommend_clusters":           "recommend.clusters",
	"recommend_seed":               "recommend.seed",
	"recommend_n_init":             "recommend.n_init",
	"recommend_max_iterations":     "recommend.max_iterations",
	"recommend_tolerance":          "recommend.tolerance",
	"recommend_workers":            "recommend.workers",
	"recommend_pool_size":          "recommend.pool_size",
	"recommend_list_column_sample": "recommend.list_column_sample",
	"recommend_default_n":          "recommend.default_n",
	"recommend_max_n":              "recommend.max_n",

	// Result cache
	"recommend_cache_enabled":       "cache.enabled",
	"recommend_cache_path":          "cache.path",
	"recommend_cache_ttl":           "cache.ttl",
	"recommend_cache_gc_interval":   "cache.gc_interval",
	"recommend_cache_discard_ratio": "cache.discard_ratio",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Client
	"emotion_service_url":   "client.emotion_url",
	"recommend_service_url": "client.recommend_url",
	"client_timeout":        "client.timeout",
	"client_rate_per_sec":   "client.rate_per_second",
	"client_burst":          "client.burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
