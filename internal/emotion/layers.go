// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// layer is one inference step of a Sequential network. build binds weights
// and returns the per-sample output shape for a per-sample input shape.
type layer interface {
	kind() string
	name() string
	build(in []int, w *Weights) ([]int, error)
	forward(x *Tensor) (*Tensor, error)
}

// activation transforms the last axis of a tensor in place. width is the
// size of that axis.
type activation func(data []float64, width int)

func lookupActivation(name string) (activation, error) {
	switch name {
	case "", "linear":
		return nil, nil
	case "relu":
		return func(d []float64, _ int) {
			for i, v := range d {
				if v < 0 {
					d[i] = 0
				}
			}
		}, nil
	case "sigmoid":
		return func(d []float64, _ int) {
			for i, v := range d {
				d[i] = 1 / (1 + math.Exp(-v))
			}
		}, nil
	case "tanh":
		return func(d []float64, _ int) {
			for i, v := range d {
				d[i] = math.Tanh(v)
			}
		}, nil
	case "elu":
		return func(d []float64, _ int) {
			for i, v := range d {
				if v < 0 {
					d[i] = math.Expm1(v)
				}
			}
		}, nil
	case "softmax":
		return softmax, nil
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
}

// softmax normalises each row of width values, shifted by the row max for stability.
func softmax(d []float64, width int) {
	for off := 0; off+width <= len(d); off += width {
		row := d[off : off+width]
		peak := floats.Max(row)
		var sum float64
		for i, v := range row {
			e := math.Exp(v - peak)
			row[i] = e
			sum += e
		}
		floats.Scale(1/sum, row)
	}
}

type base struct {
	class string
	label string
}

func (b base) kind() string { return b.class }
func (b base) name() string { return b.label }

// window computes the output length and leading pad of a sliding window
// along one axis. "same" padding follows TensorFlow: the extra cell goes after.
func window(size, k, stride int, same bool) (out, padBefore int) {
	if same {
		out = (size + stride - 1) / stride
		total := (out-1)*stride + k - size
		if total < 0 {
			total = 0
		}
		return out, total / 2
	}
	if size < k {
		return 0, 0
	}
	return (size-k)/stride + 1, 0
}

func requireRank(l layer, in []int, rank int) error {
	if len(in) != rank {
		return fmt.Errorf("layer %q (%s): expects rank-%d input, got shape %v", l.name(), l.kind(), rank, in)
	}
	return nil
}

// inputLayer only declares the input shape.
type inputLayer struct{ base }

func (l *inputLayer) build(in []int, _ *Weights) ([]int, error) { return in, nil }
func (l *inputLayer) forward(x *Tensor) (*Tensor, error)        { return x, nil }

// conv2D is a 2-D convolution over HWC samples, computed as im2col followed
// by a matrix product against the (kh*kw*cin, filters) kernel.
type conv2D struct {
	base
	filters int
	kh, kw  int
	sh, sw  int
	same    bool
	useBias bool
	act     activation

	h, w, c    int
	oh, ow     int
	padT, padL int
	kernel     *mat.Dense
	bias       []float64
}

func (l *conv2D) build(in []int, w *Weights) ([]int, error) {
	if err := requireRank(l, in, 3); err != nil {
		return nil, err
	}
	l.h, l.w, l.c = in[0], in[1], in[2]
	l.oh, l.padT = window(l.h, l.kh, l.sh, l.same)
	l.ow, l.padL = window(l.w, l.kw, l.sw, l.same)
	if l.oh < 1 || l.ow < 1 {
		return nil, fmt.Errorf("layer %q: kernel %dx%d does not fit input %v", l.label, l.kh, l.kw, in)
	}

	k, err := w.Get(l.label+"/kernel", l.kh, l.kw, l.c, l.filters)
	if err != nil {
		return nil, err
	}
	l.kernel = mat.NewDense(l.kh*l.kw*l.c, l.filters, k.Data)
	if l.useBias {
		b, err := w.Get(l.label+"/bias", l.filters)
		if err != nil {
			return nil, err
		}
		l.bias = b.Data
	}
	return []int{l.oh, l.ow, l.filters}, nil
}

func (l *conv2D) forward(x *Tensor) (*Tensor, error) {
	n := x.Batch()
	patch := l.kh * l.kw * l.c
	cols := mat.NewDense(l.oh*l.ow, patch, nil)
	out := NewTensor(n, l.oh, l.ow, l.filters)
	inSize := l.h * l.w * l.c
	outSize := l.oh * l.ow * l.filters

	for s := 0; s < n; s++ {
		src := x.Data[s*inSize : (s+1)*inSize]
		for oy := 0; oy < l.oh; oy++ {
			for ox := 0; ox < l.ow; ox++ {
				row := cols.RawRowView(oy*l.ow + ox)
				idx := 0
				for ky := 0; ky < l.kh; ky++ {
					iy := oy*l.sh + ky - l.padT
					for kx := 0; kx < l.kw; kx++ {
						ix := ox*l.sw + kx - l.padL
						cell := row[idx : idx+l.c]
						if iy < 0 || iy >= l.h || ix < 0 || ix >= l.w {
							for i := range cell {
								cell[i] = 0
							}
						} else {
							off := (iy*l.w + ix) * l.c
							copy(cell, src[off:off+l.c])
						}
						idx += l.c
					}
				}
			}
		}
		dst := mat.NewDense(l.oh*l.ow, l.filters, out.Data[s*outSize:(s+1)*outSize])
		dst.Mul(cols, l.kernel)
	}

	if l.bias != nil {
		addBias(out.Data, l.bias)
	}
	if l.act != nil {
		l.act(out.Data, l.filters)
	}
	return out, nil
}

func addBias(data, bias []float64) {
	for off := 0; off < len(data); off += len(bias) {
		floats.Add(data[off:off+len(bias)], bias)
	}
}

// pool2D is max or average pooling. Padded cells never contribute: max
// ignores them and average divides by the number of real cells.
type pool2D struct {
	base
	average bool
	ph, pw  int
	sh, sw  int
	same    bool

	h, w, c    int
	oh, ow     int
	padT, padL int
}

func (l *pool2D) build(in []int, _ *Weights) ([]int, error) {
	if err := requireRank(l, in, 3); err != nil {
		return nil, err
	}
	l.h, l.w, l.c = in[0], in[1], in[2]
	l.oh, l.padT = window(l.h, l.ph, l.sh, l.same)
	l.ow, l.padL = window(l.w, l.pw, l.sw, l.same)
	if l.oh < 1 || l.ow < 1 {
		return nil, fmt.Errorf("layer %q: pool %dx%d does not fit input %v", l.label, l.ph, l.pw, in)
	}
	return []int{l.oh, l.ow, l.c}, nil
}

func (l *pool2D) forward(x *Tensor) (*Tensor, error) {
	n := x.Batch()
	out := NewTensor(n, l.oh, l.ow, l.c)
	inSize := l.h * l.w * l.c
	o := 0
	for s := 0; s < n; s++ {
		src := x.Data[s*inSize : (s+1)*inSize]
		for oy := 0; oy < l.oh; oy++ {
			y0 := max(oy*l.sh-l.padT, 0)
			y1 := min(oy*l.sh-l.padT+l.ph, l.h)
			for ox := 0; ox < l.ow; ox++ {
				x0 := max(ox*l.sw-l.padL, 0)
				x1 := min(ox*l.sw-l.padL+l.pw, l.w)
				for ch := 0; ch < l.c; ch++ {
					acc := math.Inf(-1)
					if l.average {
						acc = 0
					}
					for iy := y0; iy < y1; iy++ {
						for ix := x0; ix < x1; ix++ {
							v := src[(iy*l.w+ix)*l.c+ch]
							if l.average {
								acc += v
							} else if v > acc {
								acc = v
							}
						}
					}
					if l.average {
						acc /= float64((y1 - y0) * (x1 - x0))
					}
					out.Data[o] = acc
					o++
				}
			}
		}
	}
	return out, nil
}

// batchNorm applies the frozen moving statistics along the last axis,
// folded into a per-channel scale and shift.
type batchNorm struct {
	base
	epsilon float64
	center  bool
	scale   bool

	mul, add []float64
}

func (l *batchNorm) build(in []int, w *Weights) ([]int, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("layer %q: batch normalization needs a channel axis", l.label)
	}
	c := in[len(in)-1]
	mean, err := w.Get(l.label+"/moving_mean", c)
	if err != nil {
		return nil, err
	}
	variance, err := w.Get(l.label+"/moving_variance", c)
	if err != nil {
		return nil, err
	}
	gamma := make([]float64, c)
	beta := make([]float64, c)
	for i := range gamma {
		gamma[i] = 1
	}
	if l.scale {
		g, err := w.Get(l.label+"/gamma", c)
		if err != nil {
			return nil, err
		}
		copy(gamma, g.Data)
	}
	if l.center {
		b, err := w.Get(l.label+"/beta", c)
		if err != nil {
			return nil, err
		}
		copy(beta, b.Data)
	}

	l.mul = make([]float64, c)
	l.add = make([]float64, c)
	for i := 0; i < c; i++ {
		l.mul[i] = gamma[i] / math.Sqrt(variance.Data[i]+l.epsilon)
		l.add[i] = beta[i] - mean.Data[i]*l.mul[i]
	}
	return in, nil
}

func (l *batchNorm) forward(x *Tensor) (*Tensor, error) {
	out := &Tensor{Shape: x.Shape, Data: make([]float64, len(x.Data))}
	c := len(l.mul)
	for off := 0; off < len(x.Data); off += c {
		for i := 0; i < c; i++ {
			out.Data[off+i] = x.Data[off+i]*l.mul[i] + l.add[i]
		}
	}
	return out, nil
}

// dropout is the identity at inference time.
type dropout struct{ base }

func (l *dropout) build(in []int, _ *Weights) ([]int, error) { return in, nil }
func (l *dropout) forward(x *Tensor) (*Tensor, error)        { return x, nil }

type flatten struct {
	base
	size int
}

func (l *flatten) build(in []int, _ *Weights) ([]int, error) {
	l.size = numel(in)
	return []int{l.size}, nil
}

func (l *flatten) forward(x *Tensor) (*Tensor, error) {
	return x.Reshape(x.Batch(), l.size)
}

// dense is a fully connected layer applied along the last axis.
type dense struct {
	base
	units   int
	useBias bool
	act     activation

	in     int
	kernel *mat.Dense
	bias   []float64
	outDim []int
}

func (l *dense) build(in []int, w *Weights) ([]int, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("layer %q: dense needs a feature axis", l.label)
	}
	l.in = in[len(in)-1]
	k, err := w.Get(l.label+"/kernel", l.in, l.units)
	if err != nil {
		return nil, err
	}
	l.kernel = mat.NewDense(l.in, l.units, k.Data)
	if l.useBias {
		b, err := w.Get(l.label+"/bias", l.units)
		if err != nil {
			return nil, err
		}
		l.bias = b.Data
	}
	l.outDim = append(append([]int(nil), in[:len(in)-1]...), l.units)
	return l.outDim, nil
}

func (l *dense) forward(x *Tensor) (*Tensor, error) {
	rows := len(x.Data) / l.in
	src := mat.NewDense(rows, l.in, x.Data)
	out := NewTensor(append([]int{x.Batch()}, l.outDim...)...)
	dst := mat.NewDense(rows, l.units, out.Data)
	dst.Mul(src, l.kernel)
	if l.bias != nil {
		addBias(out.Data, l.bias)
	}
	if l.act != nil {
		l.act(out.Data, l.units)
	}
	return out, nil
}

// activationLayer applies a standalone activation.
type activationLayer struct {
	base
	act   activation
	width int
}

func (l *activationLayer) build(in []int, _ *Weights) ([]int, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("layer %q: activation needs at least one axis", l.label)
	}
	l.width = in[len(in)-1]
	return in, nil
}

func (l *activationLayer) forward(x *Tensor) (*Tensor, error) {
	if l.act == nil {
		return x, nil
	}
	out := &Tensor{Shape: x.Shape, Data: append([]float64(nil), x.Data...)}
	l.act(out.Data, l.width)
	return out, nil
}
