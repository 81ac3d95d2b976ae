// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/goccy/go-json"
)

func tensorOf(shape []int, data ...float64) *Tensor {
	return &Tensor{Shape: shape, Data: data}
}

func weightsOf(tensors map[string]*Tensor) *Weights {
	return &Weights{tensors: tensors}
}

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// encodeSafetensors lays tensors out in name order.
func encodeSafetensors(t *testing.T, dtype string, tensors map[string]*Tensor, meta map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(tensors)+1)
	var data []byte
	for _, name := range names {
		tt := tensors[name]
		start := len(data)
		for _, v := range tt.Data {
			if dtype == "F32" {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
			} else {
				data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
			}
		}
		header[name] = map[string]any{
			"dtype":        dtype,
			"shape":        tt.Shape,
			"data_offsets": []int{start, len(data)},
		}
	}
	if meta != nil {
		header[metadataKey] = meta
	}
	hb, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	out := binary.LittleEndian.AppendUint64(nil, uint64(len(hb)))
	out = append(out, hb...)
	return append(out, data...)
}

// writeArtifacts writes a model.json and a safetensors file into dir.
func writeArtifacts(t *testing.T, dir, arch string, tensors map[string]*Tensor) Config {
	t.Helper()
	cfg := Config{
		ModelPath:   filepath.Join(dir, "model.json"),
		WeightsPath: filepath.Join(dir, "model.safetensors"),
	}
	if err := os.WriteFile(cfg.ModelPath, []byte(arch), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.WeightsPath, encodeSafetensors(t, "F32", tensors, nil), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// uniformArch maps any 48x48 image to equal probabilities over the seven classes.
const uniformArch = `{
  "class_name": "Sequential",
  "config": {
    "name": "uniform",
    "layers": [
      {"class_name": "InputLayer", "config": {"name": "input", "batch_shape": [null, 48, 48, 1]}},
      {"class_name": "Flatten", "config": {"name": "flatten"}},
      {"class_name": "Dense", "config": {"name": "dense", "units": 7, "activation": "softmax"}}
    ]
  }
}`

func uniformWeights() map[string]*Tensor {
	return map[string]*Tensor{
		"dense/kernel": NewTensor(InputSize*InputSize, NumClasses),
		"dense/bias":   NewTensor(NumClasses),
	}
}
