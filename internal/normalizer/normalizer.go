// Package normalizer maps raw skill strings onto a fixed taxonomy of skill
// categories.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/cache"
	"github.com/divya16-bit/ApplyBee/internal/embedding"
	"github.com/divya16-bit/ApplyBee/internal/logger"
)

const (
	// DefaultThreshold is the similarity a skill needs to join a category.
	DefaultThreshold = 0.6
	// LexicalBatchLimit is the largest batch served without embeddings.
	LexicalBatchLimit = 5

	exactScore   = 0.9
	partialScore = 0.7
)

// ErrDisabled is returned for embedding-sized batches when semantic
// normalization is switched off.
var ErrDisabled = errors.New("semantic normalizer disabled")

// NormalizedSkill is a raw skill with its category and similarity in [0,1].
type NormalizedSkill struct {
	Original string  `json:"original"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// VectorStore persists category embeddings between processes.
type VectorStore interface {
	LoadVectors(ctx context.Context, key string) ([][]float32, bool)
	StoreVectors(ctx context.Context, key string, vectors [][]float32)
}

// Options configure a Normalizer.
type Options struct {
	// Semantic enables the embedding path for batches above LexicalBatchLimit.
	Semantic bool
	// Model names the embedding model; it namespaces VectorStore keys.
	Model  string
	Store  VectorStore
	Logger *zap.Logger
}

// Normalizer categorizes skills. It is safe for concurrent use.
type Normalizer struct {
	embedder embedding.Embedder
	semantic bool
	model    string
	store    VectorStore
	logger   *zap.Logger

	catReady atomic.Bool
	catMu    sync.Mutex
	catVecs  map[string][][]float32
}

// New builds a Normalizer. embedder may be nil, in which case only the
// lexical path produces categories.
func New(embedder embedding.Embedder, opts Options) *Normalizer {
	return &Normalizer{
		embedder: embedder,
		semantic: opts.Semantic && embedder != nil,
		model:    opts.Model,
		store:    opts.Store,
		logger:   logger.ForComponent(opts.Logger, "normalizer"),
	}
}

// Semantic reports whether the embedding path is enabled.
func (n *Normalizer) Semantic() bool { return n != nil && n.semantic }

// Normalize returns one entry per input, in input order. Batches of up to
// LexicalBatchLimit skills are matched against category examples by string
// comparison. Larger batches use embeddings; when the backend is unavailable
// every skill becomes Other with score 0 and the error explains why. The
// slice is complete even when err is non-nil.
func (n *Normalizer) Normalize(ctx context.Context, raw []string, threshold float64) ([]NormalizedSkill, error) {
	if len(raw) == 0 {
		return []NormalizedSkill{}, nil
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	if len(raw) <= LexicalBatchLimit {
		out := make([]NormalizedSkill, len(raw))
		for i, skill := range raw {
			out[i] = Lexical(skill)
		}
		return out, nil
	}

	if !n.Semantic() {
		return allOther(raw), ErrDisabled
	}

	out, err := n.semanticNormalize(ctx, raw, threshold)
	if err != nil {
		n.logger.Warn("semantic normalization failed; categorizing as other",
			zap.Int("skills", len(raw)),
			zap.Error(err),
		)
		return allOther(raw), err
	}
	return out, nil
}

// Lexical categorizes one skill by comparing it with category examples:
// exact match scores 0.9, containment in either direction (examples longer
// than two characters) scores 0.7.
func Lexical(skill string) NormalizedSkill {
	lower := strings.ToLower(strings.TrimSpace(skill))
	result := NormalizedSkill{Original: skill, Category: Other}
	if lower == "" {
		return result
	}

	for _, cat := range categories {
		for _, ex := range cat.Examples {
			if lower == ex {
				result.Category, result.Score = cat.Name, exactScore
				return result
			}
		}
		for _, ex := range cat.Examples {
			if len(ex) > 2 && (strings.Contains(ex, lower) || strings.Contains(lower, ex)) {
				result.Category, result.Score = cat.Name, partialScore
				return result
			}
		}
	}
	return result
}

func (n *Normalizer) semanticNormalize(ctx context.Context, raw []string, threshold float64) ([]NormalizedSkill, error) {
	catVecs, err := n.categoryVectors(ctx)
	if err != nil {
		return nil, err
	}

	inputs := make([]string, len(raw))
	for i, s := range raw {
		inputs[i] = strings.ToLower(strings.TrimSpace(s))
	}
	vectors, err := n.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed skills: %w", err)
	}

	out := make([]NormalizedSkill, len(raw))
	for i, skill := range raw {
		best, bestScore := Other, 0.0
		for _, cat := range categories {
			for _, ex := range catVecs[cat.Name] {
				if sim := embedding.Cosine(vectors[i], ex); sim > bestScore {
					best, bestScore = cat.Name, sim
				}
			}
		}

		bestScore = clamp01(bestScore)
		if bestScore < threshold {
			best = Other
		}
		out[i] = NormalizedSkill{Original: skill, Category: best, Score: round2(bestScore)}
	}
	return out, nil
}

// categoryVectors embeds the category examples once per process. The
// embedding call happens under the lock so concurrent first requests share
// one computation; afterwards the map is read without locking.
func (n *Normalizer) categoryVectors(ctx context.Context) (map[string][][]float32, error) {
	if n.catReady.Load() {
		return n.catVecs, nil
	}

	n.catMu.Lock()
	defer n.catMu.Unlock()

	if n.catReady.Load() {
		return n.catVecs, nil
	}

	vecs := make(map[string][][]float32, len(categories))
	for _, cat := range categories {
		key := n.storeKey(cat.Name)
		if n.store != nil {
			if cached, ok := n.store.LoadVectors(ctx, key); ok && len(cached) == len(cat.Examples) {
				vecs[cat.Name] = cached
				continue
			}
		}

		embedded, err := n.embedder.Embed(ctx, cat.Examples)
		if err != nil {
			return nil, fmt.Errorf("embed category %s: %w", cat.Name, err)
		}
		vecs[cat.Name] = embedded
		if n.store != nil {
			n.store.StoreVectors(ctx, key, embedded)
		}
	}

	n.catVecs = vecs
	n.catReady.Store(true)
	n.logger.Debug("category embeddings ready", zap.Int("categories", len(vecs)))
	return n.catVecs, nil
}

func (n *Normalizer) storeKey(category string) string {
	model := strings.ToLower(strings.TrimSpace(n.model))
	if model == "" {
		model = "default"
	}
	return cache.Key(model, category)
}

func allOther(raw []string) []NormalizedSkill {
	out := make([]NormalizedSkill, len(raw))
	for i, s := range raw {
		out[i] = NormalizedSkill{Original: s, Category: Other}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
