// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/echonova/echonova-ml/internal/client"
	"github.com/echonova/echonova-ml/internal/config"
	"github.com/echonova/echonova-ml/internal/logging"
)

// runCheck implements "server check": it calls running services through
// internal/client and prints the answers as JSON.
//
//	server check -title "Blue in Green" -n 3
//	server check -image face.jpg
func runCheck(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	title := fs.String("title", "", "recommend songs similar to this title")
	trackID := fs.String("track-id", "", "recommend songs similar to this track id")
	image := fs.String("image", "", "classify the emotion in this image file")
	n := fs.Int("n", 0, "number of recommendations (0 uses the server default)")
	timeout := fs.Duration("timeout", time.Minute, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" && *trackID == "" && *image == "" {
		return errors.New("check: one of -title, -track-id or -image is required")
	}

	c, err := client.New(clientConfig(cfg))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logging.ContextWithRequestID(ctx, "check-"+logging.GenerateCorrelationID())

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return err
		}
		defer f.Close()
		pred, err := c.PredictEmotion(ctx, filepath.Base(*image), f)
		if err != nil {
			return fmt.Errorf("predict %s: %w", *image, err)
		}
		if err := out.Encode(pred); err != nil {
			return err
		}
	}
	if *title != "" {
		resp, err := c.RecommendByTitle(ctx, *title, *n)
		if err != nil {
			return fmt.Errorf("recommend by title: %w", err)
		}
		if err := out.Encode(resp); err != nil {
			return err
		}
	}
	if *trackID != "" {
		resp, err := c.RecommendByTrackID(ctx, *trackID, *n)
		if err != nil {
			return fmt.Errorf("recommend by track id: %w", err)
		}
		if err := out.Encode(resp); err != nil {
			return err
		}
	}
	return nil
}

func clientConfig(cfg *config.Config) client.Config {
	cc := client.DefaultConfig()
	cc.EmotionURL = cfg.Client.EmotionURL
	cc.RecommendURL = cfg.Client.RecommendURL
	cc.Timeout = cfg.Client.Timeout
	cc.RatePerSecond = cfg.Client.RatePerSecond
	cc.Burst = cfg.Client.Burst
	return cc
}
