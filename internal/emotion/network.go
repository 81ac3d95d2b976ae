// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// Network maps a batch of preprocessed images to a (batch, classes) matrix of
// probabilities.
type Network interface {
	Predict(ctx context.Context, x *Tensor) (*mat.Dense, error)
}

// Sequential is a linear stack of layers described by a Keras model.json
// architecture and a safetensors weights file.
type Sequential struct {
	name   string
	input  []int
	output []int
	layers []layer
}

type kerasModel struct {
	ClassName string          `json:"class_name"`
	Config    json.RawMessage `json:"config"`
}

type kerasGraph struct {
	Name   string       `json:"name"`
	Layers []kerasLayer `json:"layers"`
}

type kerasLayer struct {
	ClassName string          `json:"class_name"`
	Config    json.RawMessage `json:"config"`
}

type layerConfig struct {
	Name            string   `json:"name"`
	BatchInputShape []*int   `json:"batch_input_shape"`
	BatchShape      []*int   `json:"batch_shape"`
	DataFormat      string   `json:"data_format"`
	Activation      string   `json:"activation"`
	UseBias         *bool    `json:"use_bias"`
	Filters         int      `json:"filters"`
	KernelSize      []int    `json:"kernel_size"`
	Strides         []int    `json:"strides"`
	Padding         string   `json:"padding"`
	DilationRate    []int    `json:"dilation_rate"`
	PoolSize        []int    `json:"pool_size"`
	Units           int      `json:"units"`
	Epsilon         *float64 `json:"epsilon"`
	Center          *bool    `json:"center"`
	Scale           *bool    `json:"scale"`
}

// LoadSequential reads the architecture and weights files and builds the network.
func LoadSequential(modelPath, weightsPath string) (*Sequential, error) {
	arch, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}
	w, err := LoadWeights(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	return NewSequential(bytes.NewReader(arch), w)
}

// NewSequential builds a network from a Keras model.json document. Both
// Sequential and linear Functional models are accepted. When no layer declares
// a batch shape the input defaults to (InputSize, InputSize, 1).
func NewSequential(arch io.Reader, w *Weights) (*Sequential, error) {
	var m kerasModel
	if err := json.NewDecoder(arch).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode architecture: %w", err)
	}
	switch m.ClassName {
	case "Sequential", "Functional", "Model":
	default:
		return nil, fmt.Errorf("unsupported model class %q", m.ClassName)
	}

	var g kerasGraph
	// Keras 1 serialised Sequential configs as a bare list of layers.
	if trimmed := bytes.TrimSpace(m.Config); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &g.Layers); err != nil {
			return nil, fmt.Errorf("decode layers: %w", err)
		}
	} else if err := json.Unmarshal(m.Config, &g); err != nil {
		return nil, fmt.Errorf("decode model config: %w", err)
	}
	if len(g.Layers) == 0 {
		return nil, fmt.Errorf("model %q has no layers", g.Name)
	}

	s := &Sequential{name: g.Name}
	shape := []int(nil)
	for i, kl := range g.Layers {
		var cfg layerConfig
		if err := json.Unmarshal(kl.Config, &cfg); err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, kl.ClassName, err)
		}
		if declared, ok, err := declaredShape(cfg); err != nil {
			return nil, fmt.Errorf("layer %q: %w", cfg.Name, err)
		} else if ok && shape == nil {
			shape = declared
			s.input = declared
		}
		if shape == nil {
			shape = []int{InputSize, InputSize, 1}
			s.input = shape
		}

		l, err := newLayer(kl.ClassName, cfg)
		if err != nil {
			return nil, err
		}
		shape, err = l.build(shape, w)
		if err != nil {
			return nil, err
		}
		s.layers = append(s.layers, l)
	}
	s.output = shape
	return s, nil
}

// declaredShape returns the per-sample shape of batch_input_shape or
// batch_shape, when present.
func declaredShape(cfg layerConfig) ([]int, bool, error) {
	dims := cfg.BatchInputShape
	if dims == nil {
		dims = cfg.BatchShape
	}
	if len(dims) < 2 {
		return nil, false, nil
	}
	out := make([]int, 0, len(dims)-1)
	for _, d := range dims[1:] {
		if d == nil || *d < 1 {
			return nil, false, fmt.Errorf("input shape must be fully defined, got %v", derefShape(dims))
		}
		out = append(out, *d)
	}
	return out, true, nil
}

func derefShape(dims []*int) []any {
	out := make([]any, len(dims))
	for i, d := range dims {
		if d == nil {
			out[i] = nil
		} else {
			out[i] = *d
		}
	}
	return out
}

func pair(v []int, def int) (int, int) {
	switch len(v) {
	case 0:
		return def, def
	case 1:
		return v[0], v[0]
	default:
		return v[0], v[1]
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func newLayer(class string, cfg layerConfig) (layer, error) {
	b := base{class: class, label: cfg.Name}
	if cfg.DataFormat != "" && cfg.DataFormat != "channels_last" {
		return nil, fmt.Errorf("layer %q: unsupported data format %q", cfg.Name, cfg.DataFormat)
	}
	same := cfg.Padding == "same"
	if cfg.Padding != "" && cfg.Padding != "same" && cfg.Padding != "valid" {
		return nil, fmt.Errorf("layer %q: unsupported padding %q", cfg.Name, cfg.Padding)
	}

	switch class {
	case "InputLayer":
		return &inputLayer{base: b}, nil

	case "Conv2D":
		if dh, dw := pair(cfg.DilationRate, 1); dh != 1 || dw != 1 {
			return nil, fmt.Errorf("layer %q: dilated convolution is not supported", cfg.Name)
		}
		act, err := lookupActivation(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", cfg.Name, err)
		}
		kh, kw := pair(cfg.KernelSize, 1)
		sh, sw := pair(cfg.Strides, 1)
		if cfg.Filters < 1 || kh < 1 || kw < 1 || sh < 1 || sw < 1 {
			return nil, fmt.Errorf("layer %q: invalid convolution geometry", cfg.Name)
		}
		return &conv2D{
			base: b, filters: cfg.Filters, kh: kh, kw: kw, sh: sh, sw: sw,
			same: same, useBias: boolOr(cfg.UseBias, true), act: act,
		}, nil

	case "MaxPooling2D", "AveragePooling2D":
		ph, pw := pair(cfg.PoolSize, 2)
		sh, sw := ph, pw
		if len(cfg.Strides) > 0 {
			sh, sw = pair(cfg.Strides, 1)
		}
		if ph < 1 || pw < 1 || sh < 1 || sw < 1 {
			return nil, fmt.Errorf("layer %q: invalid pooling geometry", cfg.Name)
		}
		return &pool2D{
			base: b, average: class == "AveragePooling2D",
			ph: ph, pw: pw, sh: sh, sw: sw, same: same,
		}, nil

	case "BatchNormalization":
		eps := 1e-3
		if cfg.Epsilon != nil {
			eps = *cfg.Epsilon
		}
		return &batchNorm{base: b, epsilon: eps, center: boolOr(cfg.Center, true), scale: boolOr(cfg.Scale, true)}, nil

	case "Dropout", "SpatialDropout2D", "GaussianNoise":
		return &dropout{base: b}, nil

	case "Flatten":
		return &flatten{base: b}, nil

	case "Dense":
		act, err := lookupActivation(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", cfg.Name, err)
		}
		if cfg.Units < 1 {
			return nil, fmt.Errorf("layer %q: units must be positive", cfg.Name)
		}
		return &dense{base: b, units: cfg.Units, useBias: boolOr(cfg.UseBias, true), act: act}, nil

	case "Activation":
		act, err := lookupActivation(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", cfg.Name, err)
		}
		return &activationLayer{base: b, act: act}, nil

	default:
		return nil, fmt.Errorf("layer %q: unsupported layer type %q", cfg.Name, class)
	}
}

// Name returns the model name from the architecture file.
func (s *Sequential) Name() string { return s.name }

// InputShape returns the per-sample input shape.
func (s *Sequential) InputShape() []int { return append([]int(nil), s.input...) }

// OutputShape returns the per-sample output shape.
func (s *Sequential) OutputShape() []int { return append([]int(nil), s.output...) }

// Layers returns the layer names in execution order.
func (s *Sequential) Layers() []string {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.name()
	}
	return names
}

// Predict runs the batch through every layer and returns a (batch, outputs) matrix.
func (s *Sequential) Predict(ctx context.Context, x *Tensor) (*mat.Dense, error) {
	if x.Batch() < 1 || !sameShape(x.Sample(), s.input) {
		return nil, fmt.Errorf("input shape %v does not match model input (batch, %v)", x.Shape, s.input)
	}
	cur := x
	for _, l := range s.layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := l.forward(cur)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.name(), err)
		}
		cur = next
	}
	n := cur.Batch()
	return mat.NewDense(n, cur.Len()/n, append([]float64(nil), cur.Data...)), nil
}
