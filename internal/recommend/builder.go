// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/echonova/echonova-ml/internal/catalog"
	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/metrics"
	"github.com/echonova/echonova-ml/internal/recommend/algorithms"
)

// excludedColumns never become features even when numeric.
var excludedColumns = map[string]struct{}{
	"artist":  {},
	"title":   {},
	"genre":   {},
	"cluster": {},
	"_id":     {},
	"s3_url":  {},
}

// Model is the immutable output of Build: the cleaned songs with their
// cluster labels, the fitted preprocessing and the neighbour index.
type Model struct {
	Songs       []catalog.Song
	Schema      Schema
	Features    *mat.Dense
	Labels      []int
	Sizes       []int
	Inertia     float64
	K           int
	HasOID      bool
	Fingerprint uint64
	BuiltAt     time.Time

	imputer *algorithms.MedianImputer
	scaler  *algorithms.StandardScaler
	index   *algorithms.CosineIndex
}

// Len returns the number of songs.
func (m *Model) Len() int { return len(m.Songs) }

// Transform imputes and scales a raw feature vector laid out per Schema.
// Missing entries are NaN.
func (m *Model) Transform(raw []float64) ([]float64, error) {
	v, err := m.imputer.TransformVec(raw)
	if err != nil {
		return nil, err
	}
	return m.scaler.TransformVec(v)
}

// Row returns the scaled feature vector of song i.
func (m *Model) Row(i int) []float64 {
	return mat.Row(nil, i, m.Features)
}

// Build selects feature columns, imputes, scales, clusters and indexes the catalog.
func Build(ctx context.Context, cat *catalog.Catalog, cfg *Config) (*Model, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	start := time.Now()
	logger := logging.WithComponent("recommend")

	schema := selectFeatures(cat)
	for _, col := range schema.Dropped {
		logger.Warn().Str("column", col).Msg("feature has no values, dropped")
	}
	if schema.Len() == 0 {
		return nil, faults.New(faults.CodeInsufficientData, "catalog has no numeric feature columns")
	}
	if cat.Len() < cfg.Clustering.K {
		return nil, faults.New(faults.CodeInsufficientData,
			"need at least %d songs to build %d clusters, got %d", cfg.Clustering.K, cfg.Clustering.K, cat.Len())
	}

	raw := featureMatrix(cat, schema)

	imputer := algorithms.NewMedianImputer()
	if err := imputer.Fit(raw); err != nil {
		return nil, fmt.Errorf("fit imputer: %w", err)
	}
	filled, err := imputer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}

	scaler := algorithms.NewStandardScaler()
	if err := scaler.Fit(filled); err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := scaler.Transform(filled)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	km, err := algorithms.KMeans(ctx, scaled, cfg.KMeans())
	if err != nil {
		return nil, err
	}

	songs := make([]catalog.Song, cat.Len())
	copy(songs, cat.Songs)
	for i := range songs {
		songs[i].Cluster = km.Labels[i]
	}

	m := &Model{
		Songs:       songs,
		Schema:      schema,
		Features:    scaled,
		Labels:      km.Labels,
		Sizes:       km.Sizes(),
		Inertia:     km.Inertia,
		K:           cfg.Clustering.K,
		HasOID:      cat.HasOID,
		Fingerprint: cat.Fingerprint,
		BuiltAt:     time.Now(),
		imputer:     imputer,
		scaler:      scaler,
		index:       algorithms.NewCosineIndex(scaled),
	}

	took := time.Since(start)
	metrics.RecordModelBuild(m.Len(), schema.Len(), m.Sizes, took)
	logger.Info().
		Int("songs", m.Len()).
		Int("features", schema.Len()).
		Int("clusters", m.K).
		Ints("cluster_sizes", m.Sizes).
		Int("iterations", km.Iterations).
		Float64("inertia", km.Inertia).
		Dur("took", took).
		Msg("recommendation model built")
	return m, nil
}

// selectFeatures returns the numeric, non-excluded columns in catalog order.
// Coerced audio feature columns count as numeric even when every value is
// missing; those land in Dropped.
func selectFeatures(cat *catalog.Catalog) Schema {
	var s Schema
	for _, col := range cat.Columns {
		if _, skip := excludedColumns[col]; skip || catalog.IsGenreColumn(col) {
			continue
		}
		numeric, observed := columnKind(cat, col)
		if cat.Coerced(col) {
			numeric = true
		}
		if !numeric {
			continue
		}
		if !observed {
			s.Dropped = append(s.Dropped, col)
			continue
		}
		s.Features = append(s.Features, col)
	}
	return s
}

// columnKind reports whether every present value of col is a number, and
// whether any value is present at all. A column with no values is not numeric.
func columnKind(cat *catalog.Catalog, col string) (numeric, observed bool) {
	for i := range cat.Songs {
		v := cat.Songs[i].Fields[col]
		if v == nil {
			continue
		}
		observed = true
		if _, ok := v.(float64); !ok {
			return false, true
		}
	}
	return observed, observed
}

func featureMatrix(cat *catalog.Catalog, s Schema) *mat.Dense {
	x := mat.NewDense(cat.Len(), s.Len(), nil)
	for i := range cat.Songs {
		for j, col := range s.Features {
			f, ok := cat.Songs[i].Fields[col].(float64)
			if !ok {
				f = math.NaN()
			}
			x.Set(i, j, f)
		}
	}
	return x
}
