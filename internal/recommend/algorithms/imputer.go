// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package algorithms

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// MedianImputer replaces missing cells with the per-column median of the
// observed values. An even count of observations uses the mean of the two
// middle values. A column with no observations imputes 0.
type MedianImputer struct {
	Medians []float64
	empty   []int
}

// NewMedianImputer returns an unfitted imputer.
func NewMedianImputer() *MedianImputer {
	return &MedianImputer{}
}

// Fit computes column medians.
func (m *MedianImputer) Fit(x *mat.Dense) error {
	_, c := x.Dims()
	m.Medians = make([]float64, c)
	m.empty = m.empty[:0]

	for j := 0; j < c; j++ {
		med, ok := Median(column(x, j))
		if !ok {
			m.empty = append(m.empty, j)
		}
		m.Medians[j] = med
	}
	return nil
}

// EmptyColumns lists columns that had no observed values at Fit time.
func (m *MedianImputer) EmptyColumns() []int {
	return slices.Clone(m.empty)
}

// Transform returns a copy of x with missing cells filled.
func (m *MedianImputer) Transform(x *mat.Dense) (*mat.Dense, error) {
	if m.Medians == nil {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(m.Medians) {
		return nil, fmt.Errorf("imputer: got %d columns, fitted on %d", c, len(m.Medians))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if IsMissing(v) {
			return m.Medians[j]
		}
		return v
	}, x)
	return out, nil
}

// TransformVec fills missing entries of a single row.
func (m *MedianImputer) TransformVec(v []float64) ([]float64, error) {
	if m.Medians == nil {
		return nil, ErrNotFitted
	}
	if len(v) != len(m.Medians) {
		return nil, fmt.Errorf("imputer: got %d values, fitted on %d", len(v), len(m.Medians))
	}
	out := make([]float64, len(v))
	for j, val := range v {
		if IsMissing(val) {
			val = m.Medians[j]
		}
		out[j] = val
	}
	return out, nil
}

// Median returns the median of the non-missing values and false if there are none.
func Median(values []float64) (float64, bool) {
	obs := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			obs = append(obs, v)
		}
	}
	n := len(obs)
	if n == 0 {
		return 0, false
	}
	slices.Sort(obs)
	if n%2 == 1 {
		return obs[n/2], true
	}
	return (obs[n/2-1] + obs[n/2]) / 2, true
}
