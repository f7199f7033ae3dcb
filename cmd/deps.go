package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/divya16-bit/ApplyBee/internal/ai"
	"github.com/divya16-bit/ApplyBee/internal/ai/gemini"
	"github.com/divya16-bit/ApplyBee/internal/cache"
	"github.com/divya16-bit/ApplyBee/internal/embedding"
	"github.com/divya16-bit/ApplyBee/internal/filtering"
	"github.com/divya16-bit/ApplyBee/internal/gist"
	"github.com/divya16-bit/ApplyBee/internal/matcher"
	"github.com/divya16-bit/ApplyBee/internal/normalizer"
	"github.com/divya16-bit/ApplyBee/internal/scoring"
	"github.com/divya16-bit/ApplyBee/internal/secrets"
)

// engines holds everything the commands need, built once from the config.
type engines struct {
	scorer   *scoring.Engine
	answerer *gist.Engine
	cache    *cache.Redis
}

func (e *engines) Close() {
	if e == nil || e.cache == nil {
		return
	}
	_ = e.cache.Close()
}

// geminiClient creates the shared client on first use.
type geminiClient struct {
	apiKey string
	once   sync.Once
	client *genai.Client
	err    error
}

func (g *geminiClient) get(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = gemini.NewClient(ctx, g.apiKey)
	})
	return g.client, g.err
}

func buildEngines(ctx context.Context, config *Config, logger *zap.Logger) (*engines, error) {
	var client *geminiClient
	apiKey, err := resolveAPIKey(config.AI)
	if err != nil {
		logger.Warn("gemini is not configured, running lexical only",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, ai.gemini.api-key or ai.gemini.api-key-file"),
		)
	} else {
		client = &geminiClient{apiKey: apiKey}
	}

	m := config.Matcher
	wantEmbeddings := client != nil && (m.SemanticScoreEnabled || m.SemanticNormalizerEnabled)

	var embedder embedding.Embedder
	var store *cache.Redis
	if wantEmbeddings {
		embedder = embedding.NewLazy(func(ctx context.Context) (embedding.Embedder, error) {
			c, err := client.get(ctx)
			if err != nil {
				return nil, err
			}
			return gemini.NewEmbedder(c, m.SemanticModelName, logger)
		}, logger)

		if m.SemanticNormalizerEnabled {
			store = cache.NewRedis(ctx, config.Redis.URL, config.Redis.TTL, logger)
		}
	}

	norm := normalizer.New(embedder, normalizer.Options{
		Semantic: m.SemanticNormalizerEnabled,
		Model:    m.SemanticModelName,
		Store:    vectorStore(store),
		Logger:   logger,
	})

	var generator ai.TextGenerator
	var explainer ai.Explainer
	if config.AI.Enabled && client != nil {
		c, err := client.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		g := geminiSettings(config.AI)
		gen, err := gemini.NewGenerator(c, gemini.Config{
			Model:        g.Model,
			MaxRetries:   g.MaxRetries,
			MaxLogLength: g.MaxLogLength,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini generator: %w", err)
		}
		generator = gen
		if config.AI.Explain {
			explainer = gemini.NewExplainer(gen, logger, g.MaxLogLength)
		}
	}

	semanticNormalizer := norm.Semantic()
	filters := func() []filtering.Filter {
		steps := filtering.Default()
		if !semanticNormalizer {
			filtering.DisableByName(steps, "category", "semantic normalizer disabled")
		}
		return steps
	}
	logger.Debug("missing-skill filters", zap.Any("steps", filtering.Describe(filters())))

	scorer := scoring.New(scoring.Options{
		Matcher:       matcher.New(embedder, m.SemanticScoreEnabled && embedder != nil, logger),
		Normalizer:    norm,
		Filters:       filters,
		Explainer:     explainer,
		MaxInputChars: m.MaxInputChars,
		Threshold:     m.SkillCategoryThreshold,
		Logger:        logger,
	})

	answerer := gist.New(gist.Options{
		Generator:    generator,
		Defaults:     config.Gist.Defaults,
		MaxLogLength: geminiSettings(config.AI).MaxLogLength,
		Logger:       logger,
	})

	logger.Info("engines ready",
		zap.Bool("semantic_score", scorer.Semantic()),
		zap.Bool("semantic_normalizer", semanticNormalizer),
		zap.Bool("llm", generator != nil),
		zap.Bool("explain", explainer != nil),
		zap.Bool("redis_cache", store.Available()),
	)

	return &engines{scorer: scorer, answerer: answerer, cache: store}, nil
}

// vectorStore keeps a nil *cache.Redis from becoming a non-nil interface.
func vectorStore(r *cache.Redis) normalizer.VectorStore {
	if r == nil {
		return nil
	}
	return r
}

func geminiSettings(cfg AIConfig) GeminiConfig {
	if cfg.Gemini == nil {
		return GeminiConfig{}
	}
	return *cfg.Gemini
}

func resolveAPIKey(cfg AIConfig) (string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	g := geminiSettings(cfg)
	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  g.APIKeyFile,
		Value: g.APIKey,
		Env:   "GEMINI_API_KEY",
	})
}
