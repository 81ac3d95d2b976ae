// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/echonova/echonova-ml/internal/api"
	"github.com/echonova/echonova-ml/internal/config"
	"github.com/echonova/echonova-ml/internal/emotion"
)

// initEmotion builds the emotion handler. The model is loaded eagerly so a
// broken artifact shows up in the startup log; unless RequireModel is set the
// service still starts and answers 500 until the artifacts can be read.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEmotion(cfg *config.Config, logger zerolog.Logger) (*api.EmotionHandler, error) {
	if !cfg.Emotion.Enabled {
		logger.Info().Msg("Emotion service disabled (EMOTION_ENABLED=false)")
		return nil, nil
	}

	classifier := emotion.NewClassifier(emotionConfig(cfg), logger)
	if err := classifier.Load(); err != nil {
		if cfg.Emotion.RequireModel {
			return nil, fmt.Errorf("load emotion model: %w", err)
		}
		logger.Warn().Err(err).
			Str("model_path", cfg.Emotion.ModelPath).
			Msg("Emotion model not loaded; predictions will fail until it is available")
	} else {
		logger.Info().Str("model_path", cfg.Emotion.ModelPath).Msg("Emotion model loaded")
	}

	return api.NewEmotionHandler(classifier, cfg.Emotion.MaxUploadBytes), nil
}

func emotionConfig(cfg *config.Config) emotion.Config {
	return emotion.Config{
		ModelPath:   cfg.Emotion.ModelPath,
		WeightsPath: cfg.Emotion.WeightsPath,
	}
}
