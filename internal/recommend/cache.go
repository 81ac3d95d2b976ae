// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/echonova/echonova-ml/internal/logging"
)

// ResultCache stores successful query responses.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Response, bool)
	Set(ctx context.Context, key string, resp *Response)
}

// BadgerCache is a ResultCache on top of BadgerDB. Entries expire after the
// configured TTL. With an empty path the database lives in memory.
type BadgerCache struct {
	db     *badger.DB
	ttl    time.Duration
	onDisk bool
	logger zerolog.Logger
}

// OpenBadgerCache opens (or creates) the cache.
func OpenBadgerCache(path string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	return &BadgerCache{
		db:     db,
		ttl:    ttl,
		onDisk: path != "",
		logger: logging.WithComponent("recommend-cache"),
	}, nil
}

// Get returns a cached response. Misses and read errors both report false.
func (c *BadgerCache) Get(ctx context.Context, key string) (*Response, bool) {
	var resp Response
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &resp)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("result cache read failed")
		return nil, false
	}
	return &resp, true
}

// Set stores resp under key with the cache TTL. Write errors are logged only.
func (c *BadgerCache) Set(ctx context.Context, key string, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("result cache encode failed")
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(c.ttl))
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("result cache write failed")
	}
}

// OnDisk reports whether the cache has a value log that needs GC.
func (c *BadgerCache) OnDisk() bool { return c.onDisk }

// RunGC runs value-log garbage collection until nothing is left to rewrite.
// It is a no-op for in-memory caches.
func (c *BadgerCache) RunGC(discardRatio float64) error {
	if !c.onDisk {
		return nil
	}
	runs := 0
	for {
		err := c.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return err
		}
		runs++
	}
	if runs > 0 {
		c.logger.Debug().Int("rewrites", runs).Msg("value log GC")
	}
	return nil
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// cacheKey builds "fingerprint|mode|query|n". Every query term is written as
// "<byte length>:<term>", so terms containing separators cannot run into
// each other. Titles are lowercased because title lookups are
// case-insensitive.
func cacheKey(fingerprint uint64, mode Mode, query []string, n int) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(fingerprint, 16))
	sb.WriteByte('|')
	sb.WriteString(string(mode))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(len(query)))
	for _, q := range query {
		if mode != ModeByTrackID {
			q = strings.ToLower(q)
		}
		sb.WriteByte('|')
		sb.WriteString(strconv.Itoa(len(q)))
		sb.WriteByte(':')
		sb.WriteString(q)
	}
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(n))
	return sb.String()
}
