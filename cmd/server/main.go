// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/echonova/echonova-ml/internal/api"
	"github.com/echonova/echonova-ml/internal/config"
	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/supervisor"
	"github.com/echonova/echonova-ml/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if len(os.Args) > 1 && os.Args[1] == "check" {
		if err := runCheck(cfg, os.Args[2:]); err != nil {
			logging.Fatal().Err(err).Msg("Check failed")
		}
		return
	}

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("emotion", cfg.Emotion.Enabled).
		Bool("recommend", cfg.Recommend.Enabled).
		Msg("Starting Echonova ML with supervisor tree")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS_ORIGINS=* in production; set explicit origins")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	routerOpts := api.RouterOptions{
		Middleware:  api.NewChiMiddleware(middlewareConfig(cfg)),
		SlowRequest: cfg.Server.SlowRequest,
	}

	emotionHandler, err := initEmotion(cfg, logging.WithComponent("emotion"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize emotion service")
	}
	if emotionHandler != nil {
		addListener(tree, cfg, "emotion-http", cfg.Server.EmotionAddr, api.NewEmotionRouter(emotionHandler, routerOpts))
	}

	rc, err := initRecommend(ctx, cfg, logging.WithComponent("recommend"), tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation service")
	}
	if rc != nil {
		addListener(tree, cfg, "recommend-http", cfg.Server.RecommendAddr, api.NewRecommendRouter(rc.Handler, routerOpts))
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	if err := rc.Close(); err != nil {
		logging.Error().Err(err).Msg("Failed to close result cache")
	}

	logging.Info().Msg("Application stopped gracefully")
}

func addListener(tree *supervisor.SupervisorTree, cfg *config.Config, name, addr string, handler http.Handler) {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(name, server, cfg.Server.ShutdownTimeout, logging.WithComponent("api")))
	logging.Info().Str("service", name).Str("addr", addr).Msg("HTTP server service added")
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORS.AllowedOrigins = cfg.Security.CORSOrigins
	mc.Limits[api.ClassRecommend] = api.Limit{
		Requests: cfg.Security.RateLimitReqs,
		Window:   cfg.Security.RateLimitWindow,
	}
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}
