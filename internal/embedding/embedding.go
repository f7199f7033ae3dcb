// Package embedding defines the sentence-embedding capability used by the
// section matcher and the skill normalizer.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/logger"
)

// ErrUnavailable is returned when no embedding backend could be set up.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Factory builds the real backend. It runs at most once per Lazy.
type Factory func(ctx context.Context) (Embedder, error)

// Lazy defers backend construction to first use. Concurrent first calls
// build it once; a failed build is remembered and reported on every later
// call instead of being retried per request.
type Lazy struct {
	factory Factory
	logger  *zap.Logger

	ready   atomic.Bool
	mu      sync.Mutex
	backend Embedder
	err     error
}

// NewLazy wraps factory. A nil factory yields a Lazy that is always
// unavailable.
func NewLazy(factory Factory, log *zap.Logger) *Lazy {
	return &Lazy{factory: factory, logger: logger.ForComponent(log, "embedding")}
}

// Get returns the initialized backend.
func (l *Lazy) Get(ctx context.Context) (Embedder, error) {
	if l == nil {
		return nil, ErrUnavailable
	}

	if l.ready.Load() {
		return l.backend, l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready.Load() {
		return l.backend, l.err
	}
	defer l.ready.Store(true)

	if l.factory == nil {
		l.err = ErrUnavailable
		return nil, l.err
	}

	backend, err := l.factory(ctx)
	if err != nil {
		l.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		l.logger.Warn("embedding backend failed to initialize; falling back to lexical scoring", zap.Error(err))
		return nil, l.err
	}
	if backend == nil {
		l.err = ErrUnavailable
		return nil, l.err
	}

	l.backend = backend
	l.logger.Debug("embedding backend initialized")
	return l.backend, nil
}

// Embed satisfies Embedder by delegating to the lazily built backend.
func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	backend, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := backend.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed %d texts: backend returned %d vectors", len(texts), len(vectors))
	}
	return vectors, nil
}

// Static wraps an already constructed backend. A nil backend is reported as
// unavailable.
func Static(e Embedder) *Lazy {
	l := &Lazy{backend: e, logger: zap.NewNop()}
	if e == nil {
		l.err = ErrUnavailable
	}
	l.ready.Store(true)
	return l
}

// Cosine returns the cosine similarity of a and b. Degenerate inputs score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}
