package embed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"law-agent/config"
	apperrors "law-agent/errors"
	"law-agent/llmclient"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const defaultCacheSize = 256

// BackendFunc maps query text to a vector in the corpus embedding space.
type BackendFunc func(ctx context.Context, text string) ([]float32, error)

// Embedder converts query text to vectors. The underlying embedding client
// is expensive to set up, so it is constructed at most once per process;
// concurrent first calls share a single construction. Results are memoized
// in an LRU cache keyed by the exact query text.
type Embedder struct {
	once      sync.Once
	construct func() BackendFunc
	backend   BackendFunc
	cache     *lru.Cache
	logger    *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Embedder {
	construct := func() BackendFunc {
		client := llmclient.New(cfg, logger)
		return client.Embed
	}
	return newWithBackend(construct, cfg.EmbedCacheSize, logger)
}

func newWithBackend(construct func() BackendFunc, cacheSize int, logger *zap.Logger) *Embedder {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, _ := lru.New(cacheSize)
	return &Embedder{
		construct: construct,
		cache:     cache,
		logger:    logger,
	}
}

// Embed returns the vector for the given text. Backend failures surface as
// ErrDependencyUnavailable so callers treat them as a retrieval failure
// rather than a process-fatal one.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached.([]float32), nil
	}

	e.once.Do(func() {
		e.backend = e.construct()
	})

	start := time.Now()
	vec, err := e.backend(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", apperrors.ErrDependencyUnavailable, err)
	}
	if e.logger != nil {
		e.logger.Debug("Embedded query",
			zap.Duration("took", time.Since(start)),
			zap.Int("dimension", len(vec)))
	}

	e.cache.Add(text, vec)
	return vec, nil
}
