// Package server exposes the scoring and gist engines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/divya16-bit/ApplyBee/internal/gist"
	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
	"github.com/divya16-bit/ApplyBee/internal/scoring"
)

// Scorer is the part of the scoring engine the server calls.
type Scorer interface {
	CalculateMatchScore(ctx context.Context, in scoring.Input) scoring.Outcome
	Semantic() bool
}

// Answerer is the part of the gist engine the server calls.
type Answerer interface {
	Answer(ctx context.Context, req gist.Request) gist.Outcome
}

// Config controls the HTTP server.
type Config struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	MaxConcurrent  int64         `mapstructure:"max-concurrent" validate:"gte=1,lte=256"`
	RequestTimeout time.Duration `mapstructure:"request-timeout" validate:"gte=0"`
	RateLimit      float64       `mapstructure:"rate-limit" validate:"gte=0"`
	RateBurst      int           `mapstructure:"rate-burst" validate:"gte=0"`
	Version        string        `mapstructure:"-"`
}

// DefaultConfig returns the stock server settings.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8000",
		MaxConcurrent:  4,
		RequestTimeout: 60 * time.Second,
		RateLimit:      1,
		RateBurst:      5,
	}
}

// Server routes HTTP requests to the engines.
type Server struct {
	cfg      Config
	scorer   Scorer
	answerer Answerer
	sem      *semaphore.Weighted
	router   *gin.Engine
	logger   *zap.Logger
}

// New builds a Server and registers its routes.
func New(cfg Config, scorer Scorer, answerer Answerer, log *zap.Logger) (*Server, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}

	s := &Server{
		cfg:      cfg,
		scorer:   scorer,
		answerer: answerer,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:   logger.ForComponent(log, "server"),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = resumetext.MaxFileSize + 1<<20

	r.Use(
		requestID(),
		accessLog(s.logger),
		recovery(s.logger),
		rateLimit(newIPLimiter(s.cfg.RateLimit, s.cfg.RateBurst)),
	)

	r.GET("/health", s.health)
	r.POST("/resume-score", s.resumeScore)
	r.POST("/get-gist", s.getGist)
	r.POST("/match", s.match)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// score runs the engine off the handler goroutine once a slot is free.
func (s *Server) score(ctx context.Context, in scoring.Input) (scoring.Outcome, error) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return scoring.Outcome{}, fmt.Errorf("wait for scoring slot: %w", err)
	}

	type result struct {
		out scoring.Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer s.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("score resume: panic: %v", rec)}
			}
		}()
		done <- result{out: s.scorer.CalculateMatchScore(ctx, in)}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return scoring.Outcome{}, fmt.Errorf("score resume: %w", ctx.Err())
	}
}
