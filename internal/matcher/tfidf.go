package matcher

import (
	"math"
	"sort"

	"github.com/divya16-bit/ApplyBee/internal/textnorm"
)

// TFIDF returns the cosine similarity (0-100) of two documents weighted by
// smooth inverse document frequency over the pair, the way sklearn's
// TfidfVectorizer with English stopwords scores them. Empty input or an empty
// shared vocabulary scores 0.
func TFIDF(a, b string) float64 {
	ta, tb := textnorm.Tokens(a), textnorm.Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	fa, fb := counts(ta), counts(tb)

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if fa[term] > 0 {
			df++
		}
		if fb[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	// Sums run in term order so repeated calls agree to the last bit.
	var dot, na, nb float64
	for _, term := range sortedKeys(fa) {
		w := idf(term)
		va := float64(fa[term]) * w
		na += va * va
		if cb, ok := fb[term]; ok {
			dot += va * (float64(cb) * w)
		}
	}
	for _, term := range sortedKeys(fb) {
		vb := float64(fb[term]) * idf(term)
		nb += vb * vb
	}

	if na == 0 || nb == 0 {
		return 0
	}
	score := dot / (math.Sqrt(na) * math.Sqrt(nb)) * 100
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return clamp100(score)
}

func counts(tokens []string) map[string]int {
	out := make(map[string]int, len(tokens))
	for _, t := range tokens {
		out[t]++
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp100(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
