// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package catalog

import (
	"errors"
	"io"
	"slices"

	"github.com/goccy/go-json"

	"github.com/echonova/echonova-ml/internal/faults"
)

// Value is a single cell of the catalog table. After loading it is one of
// nil (missing), float64, string, bool, or []any.
type Value = any

// Row maps column name to value. An absent key is a missing value.
type Row map[string]Value

// Table is the working form of the catalog between load and validation.
// Columns keeps first-seen order. Keys is filled by IndexByID and parallels Rows.
type Table struct {
	Columns []string
	Rows    []Row
	Keys    []string
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t *Table) addColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// DropColumn removes a column and its values. Missing columns are ignored.
func (t *Table) DropColumn(name string) {
	i := slices.Index(t.Columns, name)
	if i < 0 {
		return
	}
	t.Columns = slices.Delete(t.Columns, i, i+1)
	for _, r := range t.Rows {
		delete(r, name)
	}
}

// Load decodes a JSON array of song objects into a flat table. Nested objects
// are flattened with dot-joined keys ("audio_feature.tempo", "_id.$oid"); lists
// are kept as values.
func Load(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, faults.Wrap(faults.CodeCatalogFormat, err, "invalid catalog JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, faults.New(faults.CodeCatalogFormat, "expected song catalog to contain a list of song objects")
	}

	t := &Table{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, faults.Wrap(faults.CodeCatalogFormat, err, "invalid catalog JSON")
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, faults.New(faults.CodeCatalogFormat, "expected song catalog to contain a list of song objects")
		}
		row := Row{}
		if err := readObject(dec, "", row, t); err != nil {
			return nil, faults.Wrap(faults.CodeCatalogFormat, err, "invalid catalog JSON")
		}
		t.Rows = append(t.Rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, faults.Wrap(faults.CodeCatalogFormat, err, "invalid catalog JSON")
	}
	return t, nil
}

// readObject consumes an object body (after '{') and flattens it into row.
func readObject(dec *json.Decoder, prefix string, row Row, t *Table) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("object key is not a string")
		}
		name := prefix + key

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok && d == '{' {
			if err := readObject(dec, name+".", row, t); err != nil {
				return err
			}
			continue
		}
		v, err := readValue(dec, tok)
		if err != nil {
			return err
		}
		t.addColumn(name)
		row[name] = v
	}
	_, err := dec.Token() // '}'
	return err
}

// readValue turns tok (and, for containers, the tokens after it) into a Value.
// Objects nested inside lists are kept as maps.
func readValue(dec *json.Decoder, tok json.Token) (Value, error) {
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '[':
		list := []any{}
		for dec.More() {
			next, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := readValue(dec, next)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		_, err := dec.Token()
		return list, err
	case '{':
		obj := map[string]any{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, errors.New("object key is not a string")
			}
			next, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := readValue(dec, next)
			if err != nil {
				return nil, err
			}
			obj[key] = v
		}
		_, err := dec.Token()
		return obj, err
	default:
		return nil, errors.New("unexpected delimiter")
	}
}

// canonical renders v so that equal values produce equal strings. Maps are
// encoded with sorted keys by the JSON encoder.
func canonical(v Value) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}
