// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/echonova/echonova-ml/internal/faults"
	"github.com/echonova/echonova-ml/internal/logging"
)

const (
	titleColumn  = "title"
	artistColumn = "artist"
)

// Song is one cleaned catalog record.
type Song struct {
	TrackID string
	Title   string
	Artist  string
	// Genre is the genre list as stored, never nil.
	Genre []any
	OID   *string

	// Fields holds every remaining column by name, including title and artist.
	Fields map[string]Value

	// Cluster is set on the copies held by a built recommendation model.
	Cluster int
}

// Catalog is the validated song table, ready for feature extraction.
type Catalog struct {
	Columns      []string
	Songs        []Song
	GenreColumns []string
	HasOID       bool

	// Fingerprint is the xxhash of the source bytes.
	Fingerprint uint64

	coerced map[string]struct{}
}

// Len returns the number of songs.
func (c *Catalog) Len() int { return len(c.Songs) }

// Coerced reports whether col was forced to numeric during cleaning.
func (c *Catalog) Coerced(col string) bool {
	_, ok := c.coerced[col]
	return ok
}

// LoadFile reads and builds the catalog at path.
func LoadFile(path string, opts CleanOptions) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file
	return Build(f, opts)
}

// Build runs load, genre encoding, indexing and cleaning, in that order.
func Build(r io.Reader, opts CleanOptions) (*Catalog, error) {
	start := time.Now()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, faults.Wrap(faults.CodeCatalogFormat, err, "read catalog")
	}

	t, err := Load(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	genreCols := EncodeGenres(t)
	if err := IndexByID(t); err != nil {
		return nil, err
	}
	rep := CleanAndValidate(t, opts)

	cat := fromTable(t, genreCols, rep.CoercedColumns)
	cat.Fingerprint = xxhash.Sum64(raw)

	logger := logging.WithComponent("catalog")
	logger.Info().
		Int("songs", cat.Len()).
		Int("columns", len(cat.Columns)).
		Int("genres", len(cat.GenreColumns)).
		Str("fingerprint", fmt.Sprintf("%016x", cat.Fingerprint)).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")
	return cat, nil
}

func fromTable(t *Table, genreCols, coerced []string) *Catalog {
	cat := &Catalog{
		Columns:      append([]string(nil), t.Columns...),
		Songs:        make([]Song, len(t.Rows)),
		GenreColumns: genreCols,
		HasOID:       t.HasColumn(OIDColumn),
		coerced:      make(map[string]struct{}, len(coerced)),
	}
	for _, c := range coerced {
		cat.coerced[c] = struct{}{}
	}

	for i, row := range t.Rows {
		s := Song{
			TrackID: t.Keys[i],
			Title:   textOf(row[titleColumn]),
			Artist:  textOf(row[artistColumn]),
			Genre:   genreList(row[GenreColumn]),
			Fields:  row,
		}
		if oid, ok := row[OIDColumn].(string); ok {
			s.OID = &oid
		}
		cat.Songs[i] = s
	}
	return cat
}

func genreList(v Value) []any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}
	return append([]any{}, list...)
}

func textOf(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
