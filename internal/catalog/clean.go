// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/echonova/echonova-ml/internal/logging"
)

const (
	// OIDColumn is the flattened external object id.
	OIDColumn = "_id.$oid"

	// AudioFeaturePrefix starts every audio feature column.
	AudioFeaturePrefix = "audio_feature."

	idColumn    = "_id"
	s3URLColumn = "s3_url"
)

// DefaultListColumnSample is how many non-missing values are inspected per
// column when deciding whether it holds lists.
const DefaultListColumnSample = 100

// CleanOptions tunes CleanAndValidate.
type CleanOptions struct {
	// ListColumnSample limits list detection to the first N non-missing values
	// of each column. Zero scans the whole column.
	ListColumnSample int
}

// DefaultCleanOptions returns the options used by the server.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{ListColumnSample: DefaultListColumnSample}
}

// CleanReport summarises what CleanAndValidate changed.
type CleanReport struct {
	DroppedColumns []string
	CoercedColumns []string
	ListColumns    []string
	Duplicates     int
}

// CleanAndValidate drops storage-only columns, coerces audio features to numbers
// and removes duplicate rows. Must run after IndexByID.
func CleanAndValidate(t *Table, opts CleanOptions) CleanReport {
	var rep CleanReport
	logger := logging.WithComponent("catalog")

	if t.HasColumn(idColumn) && !t.HasColumn(OIDColumn) {
		t.DropColumn(idColumn)
		rep.DroppedColumns = append(rep.DroppedColumns, idColumn)
	}
	if t.HasColumn(s3URLColumn) {
		t.DropColumn(s3URLColumn)
		rep.DroppedColumns = append(rep.DroppedColumns, s3URLColumn)
	}

	for _, col := range t.Columns {
		if !IsAudioFeature(col) {
			continue
		}
		for _, row := range t.Rows {
			if v, ok := row[col]; ok {
				row[col] = toNumber(v)
			}
		}
		rep.CoercedColumns = append(rep.CoercedColumns, col)
	}

	rep.ListColumns = listColumns(t, opts.ListColumnSample)
	rep.Duplicates = dedupe(t, rep.ListColumns)

	logger.Info().
		Strs("dropped", rep.DroppedColumns).
		Int("coerced", len(rep.CoercedColumns)).
		Strs("list_columns", rep.ListColumns).
		Int("duplicates", rep.Duplicates).
		Int("rows", len(t.Rows)).
		Msg("catalog cleaned")
	return rep
}

// IsAudioFeature reports whether name is an audio_feature.* column.
func IsAudioFeature(name string) bool {
	return strings.HasPrefix(name, AudioFeaturePrefix)
}

// toNumber coerces a cell to float64 or nil. NaN and infinities become nil.
func toNumber(v Value) Value {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case bool:
		if x {
			return 1.0
		}
		return 0.0
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// listColumns returns columns whose first sample non-missing values include a list.
func listColumns(t *Table, sample int) []string {
	var out []string
	for _, col := range t.Columns {
		seen := 0
		for _, row := range t.Rows {
			v := row[col]
			if v == nil {
				continue
			}
			if _, ok := v.([]any); ok {
				out = append(out, col)
				break
			}
			seen++
			if sample > 0 && seen >= sample {
				break
			}
		}
	}
	return out
}

// dedupe keeps the first of each group of rows that agree on every non-list
// column and returns how many were removed. Lists that show up in other
// columns are compared by their canonical encoding.
func dedupe(t *Table, skip []string) int {
	skipSet := make(map[string]struct{}, len(skip))
	for _, c := range skip {
		skipSet[c] = struct{}{}
	}
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := skipSet[c]; !ok {
			cols = append(cols, c)
		}
	}

	seen := make(map[string]struct{}, len(t.Rows))
	rows := t.Rows[:0]
	keys := t.Keys[:0]
	removed := 0

	var sb strings.Builder
	for i, row := range t.Rows {
		sb.Reset()
		for _, c := range cols {
			sb.WriteString(canonical(row[c]))
			sb.WriteByte(0x1f)
		}
		k := sb.String()
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, row)
		if i < len(t.Keys) {
			keys = append(keys, t.Keys[i])
		}
	}
	t.Rows = rows
	t.Keys = keys
	return removed
}
