// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
	"github.com/echonova/echonova-ml/internal/metrics"
)

// ErrNoTitles rejects a FromMultiple call without titles. It keeps the
// INVALID_QUERY code but is answered as not found.
var ErrNoTitles = faults.New(faults.CodeInvalidQuery, "song_titles list cannot be empty")

// Engine answers recommendation queries against a built Model.
// It is read-only after construction and safe for concurrent use.
type Engine struct {
	model  *Model
	config *Config
	logger zerolog.Logger
	cache  ResultCache

	byTitle map[string]int
	byID    map[string]int
}

// NewEngine creates an engine over model. cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(model *Model, cfg *Config, cache ResultCache, logger zerolog.Logger) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("recommend: nil model")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		model:   model,
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		cache:   cache,
		byTitle: make(map[string]int, model.Len()),
		byID:    make(map[string]int, model.Len()),
	}
	// The first song with a given title wins. Untitled songs are reachable
	// by track id only.
	for i := range model.Songs {
		e.byID[model.Songs[i].TrackID] = i
		if model.Songs[i].Title == "" {
			continue
		}
		key := strings.ToLower(model.Songs[i].Title)
		if _, ok := e.byTitle[key]; !ok {
			e.byTitle[key] = i
		}
	}
	return e, nil
}

// Model returns the underlying model.
func (e *Engine) Model() *Model { return e.model }

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config { return e.config.Clone() }

// ByTitle recommends songs similar to the first song whose title matches
// (case-insensitively).
func (e *Engine) ByTitle(ctx context.Context, title string, n int) (*Response, error) {
	return e.run(ctx, ModeByTitle, []string{title}, n, func() (*Response, error) {
		row, ok := e.lookupTitle(title)
		if !ok {
			return nil, faults.New(faults.CodeNotFound, "Song '%s' not found in the dataset", title)
		}
		items, err := e.rank(e.model.Row(row), e.model.Labels[row], map[int]struct{}{row: {}}, n)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, faults.New(faults.CodeNoSameCluster, "No songs found in the same cluster as '%s'", title)
		}
		return &Response{Items: items}, nil
	})
}

// ByTrackID recommends songs similar to the song with the given id.
func (e *Engine) ByTrackID(ctx context.Context, trackID string, n int) (*Response, error) {
	return e.run(ctx, ModeByTrackID, []string{trackID}, n, func() (*Response, error) {
		row, ok := e.byID[trackID]
		if !ok {
			return nil, faults.New(faults.CodeNotFound, "Track ID '%s' not found in the dataset", trackID)
		}
		items, err := e.rank(e.model.Row(row), e.model.Labels[row], map[int]struct{}{row: {}}, n)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, faults.New(faults.CodeNoSameCluster, "No songs found in the same cluster as track ID '%s'", trackID)
		}
		return &Response{Items: items}, nil
	})
}

// FromMultiple recommends songs near the mean feature vector of several
// titles, restricted to their most common cluster. A tie between clusters
// goes to the one seen first in input order.
func (e *Engine) FromMultiple(ctx context.Context, titles []string, n int) (*Response, error) {
	if len(titles) == 0 {
		return nil, ErrNoTitles
	}
	return e.run(ctx, ModeFromMultiple, titles, n, func() (*Response, error) {
		rows := make([]int, 0, len(titles))
		for _, t := range titles {
			row, ok := e.lookupTitle(t)
			if !ok {
				return nil, faults.New(faults.CodeNotFound, "Song '%s' not found in the dataset", t)
			}
			rows = append(rows, row)
		}

		target := modeCluster(rows, e.model.Labels)
		query := e.meanRow(rows)
		exclude := make(map[int]struct{}, len(rows))
		for _, r := range rows {
			exclude[r] = struct{}{}
		}

		items, err := e.rank(query, target, exclude, n)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, faults.New(faults.CodeNoSameCluster, "No songs found in cluster %d matching the input songs", target)
		}
		return &Response{Items: items}, nil
	})
}

// run wraps a query with n validation, the result cache, metrics and logging.
func (e *Engine) run(ctx context.Context, mode Mode, query []string, n int, fn func() (*Response, error)) (*Response, error) {
	start := time.Now()
	if n < 1 || n > e.config.Limits.MaxK {
		err := faults.New(faults.CodeInvalidQuery, "n must be between 1 and %d, got %d", e.config.Limits.MaxK, n)
		metrics.RecordRecommendQuery(string(mode), string(err.Code), time.Since(start))
		return nil, err
	}

	key := cacheKey(e.model.Fingerprint, mode, query, n)
	if e.cache != nil {
		if resp, ok := e.cache.Get(ctx, key); ok {
			metrics.RecordCacheLookup("hit")
			metrics.RecordRecommendQuery(string(mode), "ok", time.Since(start))
			return resp, nil
		}
		metrics.RecordCacheLookup("miss")
	}

	resp, err := fn()
	took := time.Since(start)
	if err != nil {
		metrics.RecordRecommendQuery(string(mode), string(faults.CodeOf(err)), took)
		logging.Ctx(ctx).Debug().
			Str("component", "recommend").
			Str("mode", string(mode)).
			Strs("query", query).
			Err(err).
			Msg("recommendation query failed")
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(ctx, key, resp)
	}
	metrics.RecordRecommendQuery(string(mode), "ok", took)
	logging.Ctx(ctx).Debug().
		Str("component", "recommend").
		Str("mode", string(mode)).
		Int("n", n).
		Int("items", len(resp.Items)).
		Dur("took", took).
		Msg("recommendation query served")
	return resp, nil
}

func (e *Engine) lookupTitle(title string) (int, bool) {
	row, ok := e.byTitle[strings.ToLower(title)]
	return row, ok
}

// rank walks the neighbour pool of query in distance order, skipping excluded
// rows and rows outside target, until n items are collected.
func (e *Engine) rank(query []float64, target int, exclude map[int]struct{}, n int) ([]Item, error) {
	pool := min(e.config.Index.PoolSize, e.model.Len())
	neighbors, err := e.model.index.Query(query, pool)
	if err != nil {
		return nil, fmt.Errorf("neighbour lookup: %w", err)
	}

	items := make([]Item, 0, n)
	for _, nb := range neighbors {
		if _, skip := exclude[nb.Row]; skip {
			continue
		}
		if e.model.Labels[nb.Row] == target {
			items = append(items, e.item(nb.Row, nb.Similarity()))
		}
		if len(items) >= n {
			break
		}
	}
	return items, nil
}

func (e *Engine) item(row int, similarity float64) Item {
	s := &e.model.Songs[row]
	genre := s.Genre
	if genre == nil {
		genre = []any{}
	}
	it := Item{
		TrackID:         s.TrackID,
		Title:           s.Title,
		Artist:          s.Artist,
		Genre:           genre,
		SimilarityScore: similarity,
	}
	if e.model.HasOID {
		it.OID = s.OID
	}
	return it
}

func (e *Engine) meanRow(rows []int) []float64 {
	_, d := e.model.Features.Dims()
	mean := make([]float64, d)
	for _, r := range rows {
		for j, v := range e.model.Features.RawRowView(r) {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}

// modeCluster returns the most common label among rows; ties go to the label
// that appears first.
func modeCluster(rows []int, labels []int) int {
	counts := make(map[int]int, len(rows))
	order := make([]int, 0, len(rows))
	for _, r := range rows {
		l := labels[r]
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}
	best := order[0]
	for _, l := range order[1:] {
		if counts[l] > counts[best] {
			best = l
		}
	}
	return best
}

// Stats summarises the model for the stats endpoint.
func (e *Engine) Stats() Stats {
	m := e.model
	return Stats{
		Songs:        m.Len(),
		Features:     m.Schema.Features,
		Dropped:      m.Schema.Dropped,
		Clusters:     m.K,
		ClusterSizes: m.Sizes,
		Inertia:      m.Inertia,
		Fingerprint:  fmt.Sprintf("%016x", m.Fingerprint),
		BuiltAt:      m.BuiltAt.UTC().Format(time.RFC3339),
		CacheEnabled: e.cache != nil,
	}
}
