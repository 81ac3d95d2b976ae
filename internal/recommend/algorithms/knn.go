// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package algorithms

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultPoolSize is how many neighbours a lookup returns before filtering.
const DefaultPoolSize = 100

// Neighbor is one row returned by a lookup.
type Neighbor struct {
	Row      int
	Distance float64
}

// Similarity is 1 - Distance.
func (n Neighbor) Similarity() float64 {
	return 1 - n.Distance
}

// CosineIndex answers brute-force cosine nearest-neighbour queries over a
// fixed set of rows. It is read-only after construction and safe for
// concurrent use.
type CosineIndex struct {
	unit *mat.Dense
	zero []bool
	rows int
}

// NewCosineIndex L2-normalises a copy of every row of x.
func NewCosineIndex(x *mat.Dense) *CosineIndex {
	r, _ := x.Dims()
	unit := mat.DenseCopyOf(x)
	zero := make([]bool, r)
	for i := 0; i < r; i++ {
		row := unit.RawRowView(i)
		norm := floats.Norm(row, 2)
		if norm == 0 {
			zero[i] = true
			continue
		}
		floats.Scale(1/norm, row)
	}
	return &CosineIndex{unit: unit, zero: zero, rows: r}
}

// Len returns the number of indexed rows.
func (ix *CosineIndex) Len() int { return ix.rows }

// Query returns the k rows closest to v ordered by ascending cosine distance,
// ties by row position. Distance is 1-cos clamped to [0, 2]; a zero vector on
// either side has distance 1. k is capped at Len().
func (ix *CosineIndex) Query(v []float64, k int) ([]Neighbor, error) {
	_, c := ix.unit.Dims()
	if len(v) != c {
		return nil, fmt.Errorf("cosine index: query has %d dims, index has %d", len(v), c)
	}
	if k <= 0 {
		return nil, nil
	}
	k = min(k, ix.rows)

	q := make([]float64, c)
	copy(q, v)
	qNorm := floats.Norm(q, 2)
	if qNorm > 0 {
		floats.Scale(1/qNorm, q)
	}

	sims := mat.NewVecDense(ix.rows, nil)
	sims.MulVec(ix.unit, mat.NewVecDense(c, q))

	all := make([]Neighbor, ix.rows)
	for i := 0; i < ix.rows; i++ {
		d := 1.0
		if qNorm > 0 && !ix.zero[i] {
			d = math.Min(2, math.Max(0, 1-sims.AtVec(i)))
		}
		all[i] = Neighbor{Row: i, Distance: d}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].Distance < all[b].Distance
	})
	return all[:k], nil
}
