// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package algorithms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const machineEpsilon = 2.220446049250313e-16

// StandardScaler centers each column on its mean and divides by its population
// standard deviation. Columns with (near) zero variance keep a scale of 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-column mean and scale. x must not contain missing cells.
func (s *StandardScaler) Fit(x *mat.Dense) error {
	r, c := x.Dims()
	if r == 0 {
		return fmt.Errorf("scaler: no rows")
	}
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		mean, variance := stat.PopMeanVariance(column(x, j), nil)
		s.Mean[j] = mean
		sd := math.Sqrt(variance)
		if sd < 10*machineEpsilon {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return nil
}

// Transform returns the scaled copy of x.
func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("scaler: got %d columns, fitted on %d", c, len(s.Mean))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// TransformVec scales a single row.
func (s *StandardScaler) TransformVec(v []float64) ([]float64, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: got %d values, fitted on %d", len(v), len(s.Mean))
	}
	out := make([]float64, len(v))
	for j, val := range v {
		out[j] = (val - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}
