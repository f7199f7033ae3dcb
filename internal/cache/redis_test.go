package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisBypassWhenUnconfigured(t *testing.T) {
	t.Parallel()

	store := NewRedis(context.Background(), "", 0, nil)
	assert.False(t, store.Available())

	_, ok := store.LoadVectors(context.Background(), Key("m", "databases"))
	assert.False(t, ok)
	store.StoreVectors(context.Background(), Key("m", "databases"), [][]float32{{1}})
	assert.Error(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}

func TestRedisBypassOnBadURL(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	store := NewRedis(context.Background(), "not a url", time.Minute, zap.New(core))

	assert.False(t, store.Available())
	assert.Equal(t, 1, logs.FilterMessage("invalid redis url, bypassing cache").Len())
}

func TestRedisBypassWhenUnreachable(t *testing.T) {
	t.Parallel()

	store := NewRedis(context.Background(), "redis://127.0.0.1:1/0", time.Minute, nil)
	assert.False(t, store.Available())
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "applybee:category-embeddings:text-embedding-004:databases", Key(" Text-Embedding-004 ", "databases"))
}

func TestNilStoreIsSafe(t *testing.T) {
	t.Parallel()

	var store *Redis
	assert.False(t, store.Available())
	_, ok := store.LoadVectors(context.Background(), "k")
	assert.False(t, ok)
	store.StoreVectors(context.Background(), "k", [][]float32{{1}})
}
