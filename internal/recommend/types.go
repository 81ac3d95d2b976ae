// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package recommend

import "slices"

// Mode names a query entry point. It labels metrics and cache keys.
type Mode string

const (
	ModeByTitle      Mode = "by_title"
	ModeByTrackID    Mode = "by_track_id"
	ModeFromMultiple Mode = "from_multiple"
)

// Schema is the ordered list of feature columns used to build the model.
type Schema struct {
	// Features are the columns of the feature matrix, in order.
	Features []string `json:"features"`

	// Dropped are numeric columns left out because no song had a value.
	Dropped []string `json:"dropped,omitempty"`
}

// Len returns the number of features.
func (s Schema) Len() int { return len(s.Features) }

// Index returns the position of a feature or -1.
func (s Schema) Index(name string) int {
	return slices.Index(s.Features, name)
}

// Item is one recommended song.
type Item struct {
	OID             *string `json:"$oid"`
	TrackID         string  `json:"track_id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Genre           []any   `json:"genre"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Response is the result of a recommendation query.
type Response struct {
	Items []Item `json:"items"`
}

// Stats describes the built model.
type Stats struct {
	Songs        int      `json:"songs"`
	Features     []string `json:"features"`
	Dropped      []string `json:"dropped_features,omitempty"`
	Clusters     int      `json:"clusters"`
	ClusterSizes []int    `json:"cluster_sizes"`
	Inertia      float64  `json:"inertia"`
	Fingerprint  string   `json:"fingerprint"`
	BuiltAt      string   `json:"built_at"`
	CacheEnabled bool     `json:"cache_enabled"`
}
