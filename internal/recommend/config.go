// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package recommend

import (
	"fmt"
	"time"

	"github.com/echonova/echonova-ml/internal/catalog"
	"github.com/echonova/echonova-ml/internal/recommend/algorithms"
)

// Config contains all configuration for building and querying the model.
type Config struct {
	// Clustering contains k-means parameters.
	Clustering ClusteringConfig `json:"clustering"`

	// Index contains nearest-neighbour lookup parameters.
	Index IndexConfig `json:"index"`

	// Catalog contains cleaning parameters.
	Catalog CatalogConfig `json:"catalog"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ClusteringConfig contains k-means parameters.
type ClusteringConfig struct {
	// K is the number of clusters.
	// Default: 40.
	K int `json:"k"`

	// Seed makes clustering reproducible.
	// Default: 42.
	Seed int64 `json:"seed"`

	// NInit is the number of seeded runs; the lowest inertia wins.
	// Default: 1.
	NInit int `json:"n_init"`

	// MaxIterations bounds Lloyd iterations per run.
	// Default: 300.
	MaxIterations int `json:"max_iterations"`

	// Tolerance is the relative centroid shift that ends a run.
	// Default: 1e-4.
	Tolerance float64 `json:"tolerance"`

	// Workers parallelises the assignment step.
	// Default: 4.
	Workers int `json:"workers"`
}

// IndexConfig contains nearest-neighbour lookup parameters.
type IndexConfig struct {
	// PoolSize is how many neighbours are fetched before cluster filtering.
	// Default: 100.
	PoolSize int `json:"pool_size"`
}

// CatalogConfig contains catalog cleaning parameters.
type CatalogConfig struct {
	// ListColumnSample is how many values per column are inspected for lists.
	// Zero scans every value.
	// Default: 100.
	ListColumnSample int `json:"list_column_sample"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of recommendations when the request omits n.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the largest accepted n.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled turns on the badger-backed result cache.
	// Default: true.
	Enabled bool `json:"enabled"`

	// Path stores the cache on disk. Empty keeps it in memory.
	Path string `json:"path"`

	// TTL is the entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// GCInterval is how often value-log GC runs for an on-disk cache.
	// Default: 5m.
	GCInterval time.Duration `json:"gc_interval"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Clustering: ClusteringConfig{
			K:             40,
			Seed:          42,
			NInit:         1,
			MaxIterations: 300,
			Tolerance:     1e-4,
			Workers:       4,
		},
		Index: IndexConfig{
			PoolSize: algorithms.DefaultPoolSize,
		},
		Catalog: CatalogConfig{
			ListColumnSample: catalog.DefaultListColumnSample,
		},
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			GCInterval: 5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Clustering.K < 1 {
		return fmt.Errorf("clustering.k must be positive, got %d", c.Clustering.K)
	}
	if c.Clustering.NInit < 1 {
		return fmt.Errorf("clustering.n_init must be positive, got %d", c.Clustering.NInit)
	}
	if c.Clustering.MaxIterations < 1 {
		return fmt.Errorf("clustering.max_iterations must be positive, got %d", c.Clustering.MaxIterations)
	}
	if c.Clustering.Tolerance < 0 {
		return fmt.Errorf("clustering.tolerance must be non-negative, got %g", c.Clustering.Tolerance)
	}
	if c.Index.PoolSize < 1 {
		return fmt.Errorf("index.pool_size must be positive, got %d", c.Index.PoolSize)
	}
	if c.Catalog.ListColumnSample < 0 {
		return fmt.Errorf("catalog.list_column_sample must be non-negative, got %d", c.Catalog.ListColumnSample)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %v", c.Cache.TTL)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// KMeans converts the clustering section to algorithm parameters.
func (c *Config) KMeans() algorithms.KMeansConfig {
	return algorithms.KMeansConfig{
		K:             c.Clustering.K,
		Seed:          c.Clustering.Seed,
		MaxIterations: c.Clustering.MaxIterations,
		Tolerance:     c.Clustering.Tolerance,
		NInit:         c.Clustering.NInit,
		NumWorkers:    c.Clustering.Workers,
	}
}

// CleanOptions converts the catalog section to cleaning options.
func (c *Config) CleanOptions() catalog.CleanOptions {
	return catalog.CleanOptions{ListColumnSample: c.Catalog.ListColumnSample}
}
