// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/metrics"
)

// Config locates the model artifacts.
type Config struct {
	ModelPath   string
	WeightsPath string
}

// DefaultConfig returns the artifact paths used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/emotion/model.json",
		WeightsPath: "models/emotion/model.safetensors",
	}
}

// Prediction is the outcome of classifying one image.
type Prediction struct {
	Label         string
	Index         int
	Probabilities map[string]float64
	Classes       []string
}

type loaded struct {
	net Network
}

// Classifier runs the emotion network over uploaded images. The network is
// loaded once and shared by all requests; a failed load is retried on the
// next call.
type Classifier struct {
	cfg    Config
	logger zerolog.Logger
	open   func(Config) (Network, error)

	mu  sync.Mutex
	net atomic.Pointer[loaded]
}

// NewClassifier creates a classifier that loads its network from cfg on first use.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout
func NewClassifier(cfg Config, logger zerolog.Logger) *Classifier {
	return &Classifier{cfg: cfg, logger: logger, open: openArtifacts}
}

// NewClassifierWithNetwork creates a classifier around an already built network.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout
func NewClassifierWithNetwork(net Network, logger zerolog.Logger) *Classifier {
	c := &Classifier{logger: logger}
	c.net.Store(&loaded{net: net})
	return c
}

func openArtifacts(cfg Config) (Network, error) {
	if err := requireFile(cfg.ModelPath); err != nil {
		return nil, faults.Wrap(faults.CodeModelUnavailable, err, "model.json not found at %s", cfg.ModelPath)
	}
	if err := requireFile(cfg.WeightsPath); err != nil {
		return nil, faults.Wrap(faults.CodeModelUnavailable, err, "model weights not found at %s", cfg.WeightsPath)
	}
	net, err := LoadSequential(cfg.ModelPath, cfg.WeightsPath)
	if err != nil {
		return nil, faults.Wrap(faults.CodeModelUnavailable, err, "cannot load model from %s", cfg.ModelPath)
	}
	return net, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.ErrNotExist
	}
	return nil
}

// Load builds the network if it is not loaded yet. It is safe to call concurrently.
func (c *Classifier) Load() error {
	_, err := c.network()
	return err
}

// Loaded reports whether the network is ready.
func (c *Classifier) Loaded() bool {
	return c.net.Load() != nil
}

func (c *Classifier) network() (Network, error) {
	if l := c.net.Load(); l != nil {
		return l.net, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l := c.net.Load(); l != nil {
		return l.net, nil
	}

	start := time.Now()
	net, err := c.open(c.cfg)
	if err != nil {
		metrics.SetModelLoaded(false)
		c.logger.Error().Err(err).Str("model_path", c.cfg.ModelPath).Msg("emotion model unavailable")
		return nil, err
	}
	c.net.Store(&loaded{net: net})
	metrics.SetModelLoaded(true)

	ev := c.logger.Info().Dur("duration", time.Since(start)).Str("model_path", c.cfg.ModelPath)
	if s, ok := net.(*Sequential); ok {
		ev = ev.Str("model", s.Name()).Int("layers", len(s.layers)).Ints("input_shape", s.InputShape())
	}
	ev.Msg("emotion model loaded")
	return net, nil
}

// Classify predicts the emotion shown in an encoded image. The network is
// loaded before the image is decoded, so missing artifacts are reported even
// for bad uploads.
func (c *Classifier) Classify(ctx context.Context, data []byte) (*Prediction, error) {
	start := time.Now()
	p, err := c.classify(ctx, data)
	if err != nil {
		metrics.RecordPredictionFailure(string(faults.CodeOf(err)))
		logging.Ctx(ctx).Debug().Err(err).Msg("emotion prediction failed")
		return nil, err
	}
	metrics.RecordPrediction(p.Label, time.Since(start))
	return p, nil
}

func (c *Classifier) classify(ctx context.Context, data []byte) (*Prediction, error) {
	net, err := c.network()
	if err != nil {
		return nil, err
	}
	x, err := Preprocess(data)
	if err != nil {
		return nil, err
	}
	out, err := net.Predict(ctx, x)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, faults.Wrap(faults.CodeInternal, err, "inference failed")
	}
	return decodePrediction(out)
}

// decodePrediction turns a (1, NumClasses) probability matrix into a
// Prediction. Ties resolve to the lowest index.
func decodePrediction(out *mat.Dense) (*Prediction, error) {
	r, cols := out.Dims()
	if r != 1 || cols != NumClasses {
		return nil, faults.New(faults.CodeInferenceShape, "Unexpected prediction shape: (%d, %d)", r, cols)
	}
	probs := mat.Row(nil, 0, out)
	idx := floats.MaxIdx(probs)

	p := &Prediction{
		Label:         labels[idx],
		Index:         idx,
		Probabilities: make(map[string]float64, NumClasses),
		Classes:       Classes(),
	}
	for i, v := range probs {
		p.Probabilities[labels[i]] = v
	}
	return p, nil
}
