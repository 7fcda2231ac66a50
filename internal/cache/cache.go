// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cache provides a JSON value cache on top of pluggable key/value stores. Cache
// failures never fail the caller: oversized entries are ignored and store errors are logged and
// treated as a miss or a dropped write.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/douira/vodafone-api-crawl/internal/logger"
)

const (
	// MaxKeySize is the default maximum key length in characters.
	MaxKeySize = 500
	// MaxValueSize is the default maximum length of a serialized value in characters.
	MaxValueSize = 20000
)

// Store is a byte oriented key/value backend. Get reports found=false for missing or expired
// keys.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Adapter stores JSON serialized values in a Store.
type Adapter struct {
	store        Store
	logger       *logger.Logger
	maxKeySize   int
	maxValueSize int
}

// NewAdapter returns an Adapter for store using the default size limits.
func NewAdapter(store Store, log *logger.Logger) *Adapter {
	return &Adapter{store: store, logger: log, maxKeySize: MaxKeySize, maxValueSize: MaxValueSize}
}

// SetLimits overrides the key and value size limits. Non-positive values keep the current limit.
func (a *Adapter) SetLimits(maxKeySize, maxValueSize int) {
	if maxKeySize > 0 {
		a.maxKeySize = maxKeySize
	}
	if maxValueSize > 0 {
		a.maxValueSize = maxValueSize
	}
}

// Get looks up key and decodes the stored value into target, which must be a pointer. It
// reports whether target was filled.
func (a *Adapter) Get(ctx context.Context, key string, target any) bool {
	if utf8.RuneCountInString(key) > a.maxKeySize {
		return false
	}
	data, found, err := a.store.Get(ctx, key)
	if err != nil {
		a.logger.Warn("failed to read from cache", slog.String("key", key), logger.Err(err))
		return false
	}
	if !found {
		return false
	}
	if err = json.Unmarshal(data, target); err != nil {
		a.logger.Warn("failed to decode cached value", slog.String("key", key), logger.Err(err))
		return false
	}
	return true
}

// Set serializes value and stores it under key. Keys or serialized values exceeding the size
// limits are silently skipped.
func (a *Adapter) Set(ctx context.Context, key string, value any) {
	if utf8.RuneCountInString(key) > a.maxKeySize {
		a.logger.Debug("cache key exceeds size limit, skipping", slog.Int("size", utf8.RuneCountInString(key)))
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("failed to encode value for cache", slog.String("key", key), logger.Err(err))
		return
	}
	if utf8.RuneCount(data) > a.maxValueSize {
		a.logger.Debug("cache value exceeds size limit, skipping", slog.String("key", key),
			slog.Int("size", utf8.RuneCount(data)))
		return
	}
	if err = a.store.Set(ctx, key, data); err != nil {
		a.logger.Warn("failed to write to cache", slog.String("key", key), logger.Err(err))
	}
}
