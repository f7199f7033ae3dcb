package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/divya16-bit/ApplyBee/internal/logger"
)

const (
	defaultEmbeddingModel = "text-embedding-004"
	embedBatchSize        = 100
	similarityTask        = "SEMANTIC_SIMILARITY"
)

// Embedder produces sentence embeddings through the Gemini embedding API.
type Embedder struct {
	models models
	model  string
	logger *zap.Logger
}

// NewEmbedder creates an Embedder on top of client.
func NewEmbedder(client *genai.Client, model string, log *zap.Logger) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("gemini client is required")
	}
	return newEmbedder(client.Models, model, log), nil
}

func newEmbedder(m models, model string, log *zap.Logger) *Embedder {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &Embedder{
		models: m,
		model:  model,
		logger: logger.ForBackend(log, Provider, model),
	}
}

// Embed returns one vector per text, in input order. Texts are sent in
// batches of at most 100.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	cfg := &genai.EmbedContentConfig{TaskType: similarityTask}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: t}},
			})
		}

		resp, err := e.models.EmbedContent(ctx, e.model, contents, cfg)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != end-start {
			got := 0
			if resp != nil {
				got = len(resp.Embeddings)
			}
			return nil, fmt.Errorf("embed content: got %d embeddings for %d texts", got, end-start)
		}
		for _, emb := range resp.Embeddings {
			if emb == nil {
				return nil, errors.New("embed content: nil embedding in response")
			}
			out = append(out, emb.Values)
		}
	}

	e.logger.Debug("embedded texts", zap.Int("texts", len(texts)))
	return out, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }
