// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package catalog loads the song catalog JSON and prepares it for clustering.
//
// Build runs four steps over the raw bytes:
//
//  1. Load: decode the top-level list and flatten nested objects into dotted
//     columns, keeping first-seen column order.
//  2. EncodeGenres: one 0/1 column per distinct genre tag.
//  3. IndexByID: key rows by track_id, dropping rows without one.
//  4. CleanAndValidate: drop storage columns, coerce audio features to numbers
//     and remove duplicate rows.
//
// The result is immutable once returned.
package catalog
