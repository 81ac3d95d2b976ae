// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package catalog

import (
	"strconv"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
)

// KeyColumn is the column that identifies a song.
const KeyColumn = "track_id"

// IndexByID moves the track_id column into t.Keys. Rows without an id are
// dropped. When an id repeats, the first row is kept.
func IndexByID(t *Table) error {
	if !t.HasColumn(KeyColumn) {
		return faults.New(faults.CodeMissingKey, "expected '%s' column in data", KeyColumn)
	}
	logger := logging.WithComponent("catalog")

	rows := make([]Row, 0, len(t.Rows))
	keys := make([]string, 0, len(t.Rows))
	seen := make(map[string]struct{}, len(t.Rows))
	var missing, dupes int

	for _, row := range t.Rows {
		id, ok := keyString(row[KeyColumn])
		if !ok {
			missing++
			continue
		}
		if _, dup := seen[id]; dup {
			dupes++
			logger.Debug().Str("track_id", id).Msg("duplicate track id, keeping first row")
			continue
		}
		seen[id] = struct{}{}
		delete(row, KeyColumn)
		rows = append(rows, row)
		keys = append(keys, id)
	}

	if missing > 0 {
		logger.Warn().Int("rows", missing).Msg("dropped rows without track_id")
	}
	if dupes > 0 {
		logger.Warn().Int("rows", dupes).Msg("dropped rows with repeated track_id")
	}

	t.DropColumn(KeyColumn)
	t.Rows = rows
	t.Keys = keys
	return nil
}

func keyString(v Value) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}
