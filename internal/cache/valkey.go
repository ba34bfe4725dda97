// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"studiosite/internal/metrics"
)

const (
	// keyPrefix namespaces response cache keys in Valkey.
	keyPrefix = "api:"

	valkeyBackend = "valkey"

	scanBatch = 100
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr, "db", db)
	return client, nil
}

// Valkey is a Cache shared by every process pointed at the same server.
type Valkey struct {
	client *redis.Client
}

// NewValkey creates a cache backed by the given client.
func NewValkey(client *redis.Client) *Valkey {
	return &Valkey{client: client}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := v.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookup(valkeyBackend, "miss")
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		metrics.CacheLookup(valkeyBackend, "error")
		return nil, false
	}
	metrics.CacheLookup(valkeyBackend, "hit")
	return val, true
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := v.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// DeletePrefix deletes matching keys in SCAN batches.
func (v *Valkey) DeletePrefix(ctx context.Context, prefix string) int {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := v.client.Scan(ctx, cursor, keyPrefix+prefix+"*", scanBatch).Result()
		if err != nil {
			slog.Warn("response cache scan error", "prefix", prefix, "error", err)
			break
		}
		if len(keys) > 0 {
			n, err := v.client.Del(ctx, keys...).Result()
			if err != nil {
				slog.Warn("response cache delete error", "prefix", prefix, "error", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	metrics.CachePurged(valkeyBackend, deleted)
	return deleted
}
