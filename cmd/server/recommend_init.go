// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/echonova/echonova-ml/internal/api"
	"github.com/echonova/echonova-ml/internal/catalog"
	"github.com/echonova/echonova-ml/internal/config"
	"github.com/echonova/echonova-ml/internal/recommend"
	"github.com/echonova/echonova-ml/internal/supervisor"
	"github.com/echonova/echonova-ml/internal/supervisor/services"
)

// buildTimeout bounds clustering at startup.
const buildTimeout = 10 * time.Minute

// RecommendComponents holds what initRecommend built.
type RecommendComponents struct {
	Handler *api.RecommendHandler
	Engine  *recommend.Engine
	Cache   *recommend.BadgerCache
}

// Close releases the result cache.
func (rc *RecommendComponents) Close() error {
	if rc == nil || rc.Cache == nil {
		return nil
	}
	return rc.Cache.Close()
}

// initRecommend loads the catalog and builds the clustering model before any
// listener starts. Returns nil, nil when the service is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*RecommendComponents, error) {
	if !cfg.Recommend.Enabled {
		logger.Info().Msg("Recommendation service disabled (RECOMMEND_ENABLED=false)")
		return nil, nil
	}

	rcfg := recommendConfig(cfg)

	logger.Info().
		Str("catalog_path", cfg.Recommend.CatalogPath).
		Int("clusters", rcfg.Clustering.K).
		Int64("seed", rcfg.Clustering.Seed).
		Msg("Building recommendation model")

	cat, err := catalog.LoadFile(cfg.Recommend.CatalogPath, rcfg.CleanOptions())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()
	model, err := recommend.Build(buildCtx, cat, rcfg)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	rc := &RecommendComponents{}
	var cache recommend.ResultCache
	if rcfg.Cache.Enabled {
		rc.Cache, err = recommend.OpenBadgerCache(rcfg.Cache.Path, rcfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		cache = rc.Cache
		if rc.Cache.OnDisk() {
			tree.AddDataService(services.NewCacheGCService(rc.Cache, services.CacheGCServiceConfig{
				Interval:     cfg.Cache.GCInterval,
				DiscardRatio: cfg.Cache.DiscardRatio,
			}, logger))
		}
		logger.Info().
			Bool("on_disk", rc.Cache.OnDisk()).
			Dur("ttl", rcfg.Cache.TTL).
			Msg("Result cache opened")
	}

	rc.Engine, err = recommend.NewEngine(model, rcfg, cache, logger)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	rc.Handler = api.NewRecommendHandler(rc.Engine)

	stats := rc.Engine.Stats()
	logger.Info().
		Int("songs", stats.Songs).
		Int("features", len(stats.Features)).
		Int("clusters", stats.Clusters).
		Msg("Recommendation model ready")
	return rc, nil
}

func recommendConfig(cfg *config.Config) *recommend.Config {
	rcfg := recommend.DefaultConfig()
	rcfg.Clustering = recommend.ClusteringConfig{
		K:             cfg.Recommend.Clusters,
		Seed:          cfg.Recommend.Seed,
		NInit:         cfg.Recommend.NInit,
		MaxIterations: cfg.Recommend.MaxIterations,
		Tolerance:     cfg.Recommend.Tolerance,
		Workers:       cfg.Recommend.Workers,
	}
	rcfg.Index.PoolSize = cfg.Recommend.PoolSize
	rcfg.Catalog.ListColumnSample = cfg.Recommend.ListColumnSample
	rcfg.Limits = recommend.LimitsConfig{
		DefaultK: cfg.Recommend.DefaultN,
		MaxK:     cfg.Recommend.MaxN,
	}
	rcfg.Cache = recommend.CacheConfig{
		Enabled:    cfg.Cache.Enabled,
		Path:       cfg.Cache.Path,
		TTL:        cfg.Cache.TTL,
		GCInterval: cfg.Cache.GCInterval,
	}
	return rcfg
}
