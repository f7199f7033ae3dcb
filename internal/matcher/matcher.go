// Package matcher scores how well resume text covers one job-description
// section, lexically and (optionally) semantically.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/embedding"
	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/textnorm"
)

const (
	SectionChunkWords   = 160
	SectionChunkOverlap = 30
	ResumeChunkWords    = 220
	ResumeChunkOverlap  = 40

	semanticWeight = 0.6
	lexicalWeight  = 0.4
	topK           = 3
)

// SectionScore holds the blended score and its parts, each in [0,100].
type SectionScore struct {
	Combined float64 `json:"combined"`
	TFIDF    float64 `json:"tfidf"`
	Semantic float64 `json:"semantic"`
}

// Resume is the per-call resume representation shared by every section.
type Resume struct {
	Normalized string
	chunks     [][]float32
}

// Matcher compares resumes with JD sections.
type Matcher struct {
	embedder embedding.Embedder
	semantic bool
	logger   *zap.Logger
}

// New builds a Matcher. Semantic scoring is active only when semantic is set
// and embedder is non-nil.
func New(embedder embedding.Embedder, semantic bool, log *zap.Logger) *Matcher {
	return &Matcher{
		embedder: embedder,
		semantic: semantic && embedder != nil,
		logger:   logger.ForComponent(log, "matcher"),
	}
}

// Semantic reports whether embeddings take part in scoring.
func (m *Matcher) Semantic() bool { return m != nil && m.semantic }

// PrepareResume normalizes the resume and, in semantic mode, embeds its
// chunks once. On embedding failure the returned Resume still supports
// lexical scoring.
func (m *Matcher) PrepareResume(ctx context.Context, raw string) (Resume, error) {
	r := Resume{Normalized: textnorm.Preprocess(raw)}
	if !m.Semantic() {
		return r, nil
	}

	chunks := Chunk(raw, ResumeChunkWords, ResumeChunkOverlap)
	if len(chunks) == 0 {
		return r, nil
	}
	vectors, err := m.embedder.Embed(ctx, chunks)
	if err != nil {
		return r, fmt.Errorf("embed resume chunks: %w", err)
	}
	r.chunks = vectors
	return r, nil
}

// SectionMatch scores section text against a prepared resume. In semantic
// mode Combined is 0.6*semantic + 0.4*tfidf, otherwise it is the TF-IDF
// score. An embedding failure yields a zero semantic part and an error; the
// returned score is still usable.
func (m *Matcher) SectionMatch(ctx context.Context, resume Resume, sectionRaw string) (SectionScore, error) {
	score := SectionScore{TFIDF: TFIDF(resume.Normalized, textnorm.Preprocess(sectionRaw))}
	if !m.Semantic() {
		score.Combined = score.TFIDF
		return score, nil
	}

	sem, err := m.semanticScore(ctx, resume.chunks, sectionRaw)
	if err != nil {
		m.logger.Warn("semantic section scoring failed", zap.Error(err))
	}
	score.Semantic = sem
	score.Combined = clamp100(semanticWeight*sem + lexicalWeight*score.TFIDF)
	return score, err
}

func (m *Matcher) semanticScore(ctx context.Context, resumeChunks [][]float32, sectionRaw string) (float64, error) {
	if strings.TrimSpace(sectionRaw) == "" || len(resumeChunks) == 0 {
		return 0, nil
	}

	chunks := Chunk(sectionRaw, SectionChunkWords, SectionChunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}
	sectionVecs, err := m.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed section chunks: %w", err)
	}

	return TopKMean(sectionVecs, resumeChunks, topK) * 100, nil
}

// TopKMean averages the k highest cosine similarities over every pair of
// section and resume vectors. The result is clamped to [0,1].
func TopKMean(section, resume [][]float32, k int) float64 {
	if len(section) == 0 || len(resume) == 0 || k <= 0 {
		return 0
	}

	sims := make([]float64, 0, len(section)*len(resume))
	for _, s := range section {
		for _, r := range resume {
			sims = append(sims, embedding.Cosine(s, r))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
	if k > len(sims) {
		k = len(sims)
	}

	total := 0.0
	for _, v := range sims[:k] {
		total += v
	}
	return clamp100(total/float64(k)*100) / 100
}

// Chunk splits text into windows of size words that overlap by overlap
// words.
func Chunk(text string, size, overlap int) []string {
	words := textnorm.Words(text)
	if len(words) == 0 || size <= 0 {
		return nil
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
