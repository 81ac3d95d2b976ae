// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package algorithms holds the numeric building blocks of the song
// recommender. Everything works on gonum dense matrices with one row per song.
//
// Preprocessing:
//   - MedianImputer: fills NaN cells with the column median
//   - StandardScaler: zero mean, unit population variance per column
//
// Clustering:
//   - KMeans: k-means++ seeding and Lloyd iterations, deterministic per seed
//
// Retrieval:
//   - CosineIndex: brute-force cosine nearest neighbours
//
// Fitted transformers and indexes are read-only and safe for concurrent use.
package algorithms
