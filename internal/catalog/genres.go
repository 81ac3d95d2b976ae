// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// GenreColumn holds the list of genre tags.
	GenreColumn = "genre"

	// GenrePrefix starts every one-hot genre column name.
	GenrePrefix = "genre_"
)

// genreTags returns the tags of a genre cell as one-hot column suffixes,
// NFC-normalised. Anything that is not a list yields no tags.
func genreTags(v Value) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		switch x := item.(type) {
		case string:
			tags = append(tags, norm.NFC.String(x))
		case float64, bool:
			tags = append(tags, fmt.Sprint(x))
		}
	}
	return tags
}

// EncodeGenres adds one 0/1 column per distinct genre tag, named GenrePrefix+tag,
// in sorted tag order. A genre cell that is absent or not a list becomes the
// empty list. The genre column itself is kept. The new column names are returned.
func EncodeGenres(t *Table) []string {
	t.addColumn(GenreColumn)

	seen := map[string]struct{}{}
	perRow := make([]map[string]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		tags := genreTags(row[GenreColumn])
		if _, ok := row[GenreColumn].([]any); !ok {
			row[GenreColumn] = []any{}
		}
		set := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			set[tag] = struct{}{}
			seen[tag] = struct{}{}
		}
		perRow[i] = set
	}

	all := make([]string, 0, len(seen))
	for tag := range seen {
		all = append(all, tag)
	}
	sort.Strings(all)

	cols := make([]string, 0, len(all))
	for _, tag := range all {
		col := GenrePrefix + tag
		t.addColumn(col)
		cols = append(cols, col)
		for i, row := range t.Rows {
			if _, ok := perRow[i][tag]; ok {
				row[col] = 1.0
			} else {
				row[col] = 0.0
			}
		}
	}
	return cols
}

// IsGenreColumn reports whether name is a one-hot genre column.
func IsGenreColumn(name string) bool {
	return strings.HasPrefix(name, GenrePrefix)
}
