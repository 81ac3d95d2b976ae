// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/echonova/echonova-ml/internal/faults"
)

// KMeansConfig contains configuration for k-means clustering.
type KMeansConfig struct {
	// K is the number of clusters.
	K int

	// Seed drives k-means++ initialisation. Equal seeds give equal labels.
	Seed int64

	// MaxIterations bounds the Lloyd iterations of a single run.
	MaxIterations int

	// Tolerance is relative to the mean column variance of the data. A run
	// stops once the summed squared centroid shift falls below it.
	Tolerance float64

	// NInit is the number of independently seeded runs. The run with the
	// lowest inertia wins.
	NInit int

	// NumWorkers parallelises the assignment step.
	NumWorkers int
}

// DefaultKMeansConfig returns the clustering defaults used for the song catalog.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		K:             40,
		Seed:          42,
		MaxIterations: 300,
		Tolerance:     1e-4,
		NInit:         1,
		NumWorkers:    4,
	}
}

// KMeansResult is the outcome of the best run.
type KMeansResult struct {
	Labels     []int
	Centroids  *mat.Dense
	Inertia    float64
	Iterations int
}

// Sizes returns the number of rows per cluster.
func (r *KMeansResult) Sizes() []int {
	k, _ := r.Centroids.Dims()
	sizes := make([]int, k)
	for _, l := range r.Labels {
		sizes[l]++
	}
	return sizes
}

// KMeans clusters the rows of x with k-means++ seeding followed by Lloyd
// iterations. Fewer rows than clusters is an InsufficientData failure.
func KMeans(ctx context.Context, x *mat.Dense, cfg KMeansConfig) (*KMeansResult, error) {
	n, d := x.Dims()
	if cfg.K <= 0 {
		return nil, fmt.Errorf("kmeans: k must be positive, got %d", cfg.K)
	}
	if n < cfg.K {
		return nil, faults.New(faults.CodeInsufficientData,
			"need at least %d songs to build %d clusters, got %d", cfg.K, cfg.K, n)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 300
	}
	if cfg.NInit <= 0 {
		cfg.NInit = 1
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}

	var meanVar float64
	for j := 0; j < d; j++ {
		_, v := stat.PopMeanVariance(column(x, j), nil)
		meanVar += v
	}
	if d > 0 {
		meanVar /= float64(d)
	}
	tol := cfg.Tolerance * meanVar

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible clustering, not security
	var best *KMeansResult
	for run := 0; run < cfg.NInit; run++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		res := lloyd(ctx, x, seedPlusPlus(x, cfg.K, rng), cfg, tol)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centroids with greedy k-means++: each step
// samples 2+ln(k) candidates proportionally to squared distance and keeps the
// one that lowers the potential most.
func seedPlusPlus(x *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := x.Dims()
	centers := mat.NewDense(k, d, nil)
	trials := 2 + int(math.Log(float64(k)))

	first := rng.Intn(n)
	centers.SetRow(0, x.RawRowView(first))

	closest := make([]float64, n)
	for i := 0; i < n; i++ {
		closest[i] = sqDist(x.RawRowView(i), centers.RawRowView(0))
	}
	potential := floats.Sum(closest)

	candDist := make([]float64, n)
	bestDist := make([]float64, n)
	for c := 1; c < k; c++ {
		bestCand, bestPot := -1, math.Inf(1)
		for t := 0; t < trials; t++ {
			cand := sampleProportional(closest, potential, rng)
			pot := 0.0
			for i := 0; i < n; i++ {
				dd := math.Min(closest[i], sqDist(x.RawRowView(i), x.RawRowView(cand)))
				candDist[i] = dd
				pot += dd
			}
			if pot < bestPot {
				bestCand, bestPot = cand, pot
				copy(bestDist, candDist)
			}
		}
		centers.SetRow(c, x.RawRowView(bestCand))
		copy(closest, bestDist)
		potential = bestPot
	}
	return centers
}

func sampleProportional(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if cum >= r {
			return i
		}
	}
	return len(weights) - 1
}

func lloyd(ctx context.Context, x *mat.Dense, centers *mat.Dense, cfg KMeansConfig, tol float64) *KMeansResult {
	n, d := x.Dims()
	k := cfg.K
	labels := make([]int, n)
	dist := make([]float64, n)

	iter := 0
	for iter < cfg.MaxIterations {
		iter++
		assign(x, centers, labels, dist, cfg.NumWorkers)

		next := mat.NewDense(k, d, nil)
		counts := make([]int, k)
		for i := 0; i < n; i++ {
			floats.Add(next.RawRowView(labels[i]), x.RawRowView(i))
			counts[labels[i]]++
		}
		reseedEmpty(x, next, counts, labels, dist)
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), next.RawRowView(c))
			}
		}

		shift := 0.0
		for c := 0; c < k; c++ {
			shift += sqDist(centers.RawRowView(c), next.RawRowView(c))
		}
		centers = next
		if shift <= tol || ContextCancelled(ctx) {
			break
		}
	}

	assign(x, centers, labels, dist, cfg.NumWorkers)
	return &KMeansResult{
		Labels:     labels,
		Centroids:  centers,
		Inertia:    floats.Sum(dist),
		Iterations: iter,
	}
}

// reseedEmpty moves every empty cluster onto the row farthest from its current
// centroid, taking that row out of its old cluster.
func reseedEmpty(x, sums *mat.Dense, counts, labels []int, dist []float64) {
	used := map[int]struct{}{}
	for c := range counts {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, dd := range dist {
			if _, taken := used[i]; taken || counts[labels[i]] <= 1 {
				continue
			}
			if dd > farDist {
				far, farDist = i, dd
			}
		}
		if far < 0 {
			continue
		}
		used[far] = struct{}{}
		row := x.RawRowView(far)
		floats.Sub(sums.RawRowView(labels[far]), row)
		counts[labels[far]]--
		sums.SetRow(c, row)
		counts[c] = 1
		labels[far] = c
		dist[far] = 0
	}
}

// assign sets labels[i] to the nearest centroid and dist[i] to the squared
// distance. Ties go to the lower cluster index.
func assign(x, centers *mat.Dense, labels []int, dist []float64, workers int) {
	n, _ := x.Dims()
	k, _ := centers.Dims()
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				row := x.RawRowView(i)
				best, bestD := 0, math.Inf(1)
				for c := 0; c < k; c++ {
					if dd := sqDist(row, centers.RawRowView(c)); dd < bestD {
						best, bestD = c, dd
					}
				}
				labels[i] = best
				dist[i] = bestD
			}
		}(start, end)
	}
	wg.Wait()
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		diff := a[i] - b[i]
		s += diff * diff
	}
	return s
}
