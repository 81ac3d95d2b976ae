// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// maxHeaderSize bounds the JSON header of a weights file.
const maxHeaderSize = 100 << 20

const metadataKey = "__metadata__"

// Weights holds the named parameter tensors of a network, read from a
// safetensors container. Names follow "<layer>/<param>", e.g. "conv2d/kernel".
type Weights struct {
	tensors  map[string]*Tensor
	Metadata map[string]string
}

type tensorHeader struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// LoadWeights reads a safetensors file from disk.
func LoadWeights(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWeights(f)
}

// ReadWeights parses a safetensors stream: an 8-byte little-endian header
// length, a JSON header describing each tensor, then the raw data buffer.
// F32 and F64 tensors are supported.
func ReadWeights(r io.Reader) (*Weights, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	if n == 0 || n > maxHeaderSize {
		return nil, fmt.Errorf("invalid header length %d", n)
	}
	header := make([]byte, n)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(header, &entries); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tensor data: %w", err)
	}

	w := &Weights{tensors: make(map[string]*Tensor, len(entries))}
	for name, raw := range entries {
		if name == metadataKey {
			if err := json.Unmarshal(raw, &w.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
			continue
		}
		var h tensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		t, err := decodeTensor(h, data)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		w.tensors[normalizeName(name)] = t
	}
	return w, nil
}

// normalizeName strips the ":0" suffix TensorFlow appends to variable names.
func normalizeName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	return name
}

func decodeTensor(h tensorHeader, data []byte) (*Tensor, error) {
	var size int
	switch h.DType {
	case "F32":
		size = 4
	case "F64":
		size = 8
	default:
		return nil, fmt.Errorf("unsupported dtype %q", h.DType)
	}
	for _, d := range h.Shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension in shape %v", h.Shape)
		}
	}
	begin, end := h.DataOffsets[0], h.DataOffsets[1]
	count := numel(h.Shape)
	if begin < 0 || end < begin || end > len(data) {
		return nil, fmt.Errorf("data offsets [%d, %d] outside buffer of %d bytes", begin, end, len(data))
	}
	if end-begin != count*size {
		return nil, fmt.Errorf("data offsets cover %d bytes, shape %v needs %d", end-begin, h.Shape, count*size)
	}

	t := NewTensor(h.Shape...)
	buf := data[begin:end]
	for i := range t.Data {
		if size == 4 {
			t.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		} else {
			t.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	}
	return t, nil
}

// Get returns the named tensor and checks its shape.
func (w *Weights) Get(name string, shape ...int) (*Tensor, error) {
	t, ok := w.tensors[name]
	if !ok {
		return nil, fmt.Errorf("missing weight %q", name)
	}
	if !sameShape(t.Shape, shape) {
		return nil, fmt.Errorf("weight %q has shape %v, want %v", name, t.Shape, shape)
	}
	return t, nil
}

// Names returns the tensor names in sorted order.
func (w *Weights) Names() []string {
	names := make([]string, 0, len(w.tensors))
	for name := range w.tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tensors.
func (w *Weights) Len() int { return len(w.tensors) }
