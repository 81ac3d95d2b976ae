// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package algorithms

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned when a transform runs before Fit.
var ErrNotFitted = errors.New("algorithms: not fitted")

// Transformer is a fitted column-wise preprocessing step.
type Transformer interface {
	Fit(x *mat.Dense) error
	Transform(x *mat.Dense) (*mat.Dense, error)
	TransformVec(v []float64) ([]float64, error)
}

// Missing is the cell value that marks a missing feature in a matrix.
var Missing = math.NaN()

// IsMissing reports whether v marks a missing cell.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// column copies column j of x.
func column(x *mat.Dense, j int) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	mat.Col(out, j, x)
	return out
}

// ContextCancelled checks whether ctx is done without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
