// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache holds serialized API responses for a bounded time. Two
// backends exist: an in-process map (default) and Valkey. Both fail open:
// backend errors are logged and behave like misses.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache stores response bodies keyed by request path and query.
type Cache interface {
	// Get returns the cached value and true, or nil and false on a miss
	// (including expired entries and backend errors).
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value for ttl. Failures are logged, never returned.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// DeletePrefix removes every key starting with prefix and returns the
	// number removed.
	DeletePrefix(ctx context.Context, prefix string) int
}

// Policy selects what happens to cached responses when content changes.
type Policy string

const (
	// PolicyTTL leaves cached responses alone until they expire. Readers may
	// see stale data for up to one TTL after a write.
	PolicyTTL Policy = "ttl"
	// PolicyWrite purges a collection's cached responses after each write.
	PolicyWrite Policy = "write"
)

// Invalidator applies the configured Policy after writes.
type Invalidator struct {
	cache  Cache
	policy Policy
}

// NewInvalidator creates an invalidator. A nil cache makes it a no-op.
func NewInvalidator(c Cache, policy Policy) *Invalidator {
	return &Invalidator{cache: c, policy: policy}
}

// Purge removes cached responses under prefix when the policy is PolicyWrite.
func (i *Invalidator) Purge(ctx context.Context, prefix string) {
	if i == nil || i.cache == nil || i.policy != PolicyWrite {
		return
	}
	n := i.cache.DeletePrefix(ctx, prefix)
	slog.Debug("cache purged", "prefix", prefix, "keys", n)
}
