package normalizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneHotEmbedder puts every category example on its own axis per category so
// an exact example scores 1.0 against its category and 0 elsewhere. Unknown
// text lands on a spare axis.
type oneHotEmbedder struct {
	calls atomic.Int32
	fail  error
}

func (e *oneHotEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.fail != nil {
		return nil, e.fail
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(categories)+1)
		vec[len(categories)] = 1
		for ci, cat := range categories {
			for _, ex := range cat.Examples {
				if ex == text {
					vec[len(categories)] = 0
					vec[ci] = 1
				}
			}
			if vec[ci] == 1 {
				break
			}
		}
		out[i] = vec
	}
	return out, nil
}

type memoryStore struct {
	mu     sync.Mutex
	data   map[string][][]float32
	writes int
}

func (m *memoryStore) LoadVectors(_ context.Context, key string) ([][]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryStore) StoreVectors(_ context.Context, key string, vectors [][]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][][]float32{}
	}
	m.data[key] = vectors
	m.writes++
}

func TestNormalizeSmallBatchIsLexical(t *testing.T) {
	t.Parallel()

	emb := &oneHotEmbedder{}
	n := New(emb, Options{Semantic: true})

	got, err := n.Normalize(context.Background(), []string{"python"}, 0.6)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "programming_languages", got[0].Category)
	assert.GreaterOrEqual(t, got[0].Score, 0.6)

	got, err = n.Normalize(context.Background(), []string{"banana"}, 0.6)
	require.NoError(t, err)
	assert.Equal(t, Other, got[0].Category)
	assert.Zero(t, got[0].Score)

	assert.Zero(t, emb.calls.Load(), "lexical path must not embed")
}

func TestLexical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		skill    string
		category string
		score    float64
	}{
		{skill: "Python", category: "programming_languages", score: 0.9},
		{skill: "postgresql", category: "databases", score: 0.9},
		{skill: "spring boot", category: "backend_frameworks", score: 0.9},
		{skill: "github actions ci", category: "ci_cd", score: 0.7},
		{skill: "terraform cloud", category: "infra_as_code", score: 0.7},
		{skill: "banana", category: Other, score: 0},
		{skill: "", category: Other, score: 0},
	}

	for _, tt := range tests {
		got := Lexical(tt.skill)
		assert.Equal(t, tt.category, got.Category, tt.skill)
		assert.Equal(t, tt.score, got.Score, tt.skill)
		assert.Equal(t, tt.skill, got.Original)
	}
}

func TestNormalizeSemantic(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	n := New(&oneHotEmbedder{}, Options{Semantic: true, Model: "stub", Store: store})

	raw := []string{"python", "django", "aws", "banana", "redis", "kafka"}
	got, err := n.Normalize(context.Background(), raw, 0.6)
	require.NoError(t, err)
	require.Len(t, got, len(raw))

	want := []string{"programming_languages", "backend_frameworks", "cloud_platforms", Other, "databases", Other}
	for i := range raw {
		assert.Equal(t, raw[i], got[i].Original)
		assert.Equal(t, want[i], got[i].Category, raw[i])
		assert.GreaterOrEqual(t, got[i].Score, 0.0)
		assert.LessOrEqual(t, got[i].Score, 1.0)
	}
	assert.Equal(t, len(categories), store.writes)
}

// fixedEmbedder returns preset vectors for named texts and defers to
// oneHotEmbedder for everything else.
type fixedEmbedder struct {
	oneHotEmbedder
	vectors map[string][]float32
}

func (e *fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := e.oneHotEmbedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, text := range texts {
		if v, ok := e.vectors[text]; ok {
			out[i] = v
		}
	}
	return out, nil
}

func TestNormalizeThresholdUsesUnroundedScore(t *testing.T) {
	t.Parallel()

	axis := func(first float32) []float32 {
		vec := make([]float32, len(categories)+1)
		vec[0] = first
		vec[len(categories)] = 0.8
		return vec
	}
	emb := &fixedEmbedder{vectors: map[string][]float32{
		// cosine against the first category is about 0.598 and 0.613
		"almost": axis(0.597),
		"enough": axis(0.62),
	}}
	n := New(emb, Options{Semantic: true})

	got, err := n.Normalize(context.Background(), []string{"almost", "enough", "banana", "kiwi", "plum", "fig"}, 0.6)
	require.NoError(t, err)

	assert.Equal(t, Other, got[0].Category)
	assert.InDelta(t, 0.6, got[0].Score, 1e-9)
	assert.Equal(t, categories[0].Name, got[1].Category)
	assert.InDelta(t, 0.61, got[1].Score, 1e-9)
}

func TestNormalizeUsesStoredCategoryVectors(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	first := New(&oneHotEmbedder{}, Options{Semantic: true, Model: "stub", Store: store})
	_, err := first.Normalize(context.Background(), make([]string, 6), 0.6)
	require.NoError(t, err)

	emb := &oneHotEmbedder{}
	second := New(emb, Options{Semantic: true, Model: "stub", Store: store})
	_, err = second.Normalize(context.Background(), []string{"a", "b", "c", "d", "e", "f"}, 0.6)
	require.NoError(t, err)

	// only the skills batch is embedded; categories come from the store
	assert.Equal(t, int32(1), emb.calls.Load())
}

func TestNormalizeCategoryCacheBuiltOnce(t *testing.T) {
	t.Parallel()

	emb := &oneHotEmbedder{}
	n := New(emb, Options{Semantic: true})
	raw := []string{"python", "java", "go", "rust", "ruby", "php"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := n.Normalize(context.Background(), raw, 0.6)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(len(categories)+8), emb.calls.Load())
}

func TestNormalizeDegrades(t *testing.T) {
	t.Parallel()

	raw := []string{"python", "django", "aws", "banana", "redis", "kafka"}

	failing := New(&oneHotEmbedder{fail: errors.New("quota exceeded")}, Options{Semantic: true})
	got, err := failing.Normalize(context.Background(), raw, 0.6)
	require.Error(t, err)
	require.Len(t, got, len(raw))
	for _, s := range got {
		assert.Equal(t, Other, s.Category)
		assert.Zero(t, s.Score)
	}

	disabled := New(&oneHotEmbedder{}, Options{Semantic: false})
	got, err = disabled.Normalize(context.Background(), raw, 0.6)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Len(t, got, len(raw))

	nilEmbedder := New(nil, Options{Semantic: true})
	assert.False(t, nilEmbedder.Semantic())
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	got, err := New(nil, Options{}).Normalize(context.Background(), nil, 0.6)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsCritical(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCritical("databases"))
	assert.True(t, IsCritical("api_development"))
	assert.False(t, IsCritical("testing"))
	assert.False(t, IsCritical(Other))
}
