// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

/*
Package recommend builds the song recommendation model and serves queries over it.

# Build

Build turns a cleaned catalog.Catalog into a Model once at startup:

 1. Select features: numeric columns minus artist, title, genre, cluster,
    _id, s3_url and the genre_* one-hot columns. Columns with no values
    are dropped and listed in Schema.Dropped.
 2. Impute missing cells with the column median.
 3. Standard-scale every column.
 4. Cluster with k-means (k=40, seed 42 by default).
 5. Index the scaled rows for cosine nearest-neighbour lookup.

# Query

Engine exposes three entry points. Each one fetches a pool of nearest
neighbours (100 by default), drops the query songs, keeps only songs in the
target cluster and stops after n:

	resp, err := engine.ByTitle(ctx, "Blue in Green", 5)
	resp, err := engine.ByTrackID(ctx, "TRK123", 5)
	resp, err := engine.FromMultiple(ctx, []string{"So What", "Blue in Green"}, 5)

Failures are *faults.Error values: NOT_FOUND for an unknown title or id,
NO_SAME_CLUSTER_MATCH when the pool holds no other song of the target
cluster, INVALID_QUERY for an empty title list or n out of range.

# Caching

Successful responses can be cached in BadgerDB (in memory by default). Keys
include the catalog fingerprint, so a different catalog never serves stale
results.
*/
package recommend
