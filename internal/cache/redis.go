// Package cache persists category reference embeddings in redis so a fresh
// process can skip re-embedding the static category examples.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/logger"
)

const (
	keyPrefix   = "applybee:category-embeddings:"
	pingTimeout = 2 * time.Second
	defaultTTL  = 30 * 24 * time.Hour
)

// Redis is a best-effort vector store. When redis cannot be reached every
// call becomes a miss or a no-op.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis connects to url (redis://host:port/db). An empty url, a malformed
// url or a failed ping yields a store that bypasses redis.
func NewRedis(ctx context.Context, url string, ttl time.Duration, log *zap.Logger) *Redis {
	log = logger.ForComponent(log, "cache")
	if ttl <= 0 {
		ttl = defaultTTL
	}

	url = strings.TrimSpace(url)
	if url == "" {
		return &Redis{ttl: ttl, logger: log}
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid redis url, bypassing cache", zap.Error(err))
		return &Redis{ttl: ttl, logger: log}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", zap.String("addr", opts.Addr), zap.Error(err))
		_ = client.Close()
		return &Redis{ttl: ttl, logger: log}
	}

	log.Info("redis cache connected", zap.String("addr", opts.Addr))
	return &Redis{client: client, ttl: ttl, logger: log}
}

// Available reports whether redis is in use.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

// Key builds the storage key for a model and category.
func Key(model, category string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(model)) + ":" + category
}

// LoadVectors returns cached vectors for key.
func (r *Redis) LoadVectors(ctx context.Context, key string) ([][]float32, bool) {
	if !r.Available() {
		return nil, false
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnUnavailableOnce(err)
		}
		return nil, false
	}

	var vectors [][]float32
	if err := json.Unmarshal(raw, &vectors); err != nil || len(vectors) == 0 {
		return nil, false
	}
	return vectors, true
}

// StoreVectors writes vectors under key. Failures are logged once and
// otherwise ignored.
func (r *Redis) StoreVectors(ctx context.Context, key string, vectors [][]float32) {
	if !r.Available() || len(vectors) == 0 {
		return
	}

	raw, err := json.Marshal(vectors)
	if err != nil {
		r.logger.Debug("encode vectors", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
}

// Ping checks connectivity for health reporting.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return errors.New("redis cache disabled")
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client.
func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis call failed, continuing without cache", zap.Error(err))
	}
}
