package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a cached embedding stays valid.
const DefaultCacheTTL = 24 * time.Hour

// CachedEmbedder memoizes embeddings in Redis keyed by model and text hash.
// Redis failures degrade to calling the wrapped embedder.
type CachedEmbedder struct {
	embedder Embedder
	redis    *goredis.Client
	ttl      time.Duration
	prefix   string
}

// NewCachedEmbedder wraps embedder with a Redis cache. model is part of the
// key so switching models never serves stale vectors.
func NewCachedEmbedder(embedder Embedder, redis *goredis.Client, model string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedEmbedder{
		embedder: embedder,
		redis:    redis,
		ttl:      ttl,
		prefix:   "emb:" + embedder.Name() + ":" + model + ":",
	}
}

// Name implements Embedder.
func (c *CachedEmbedder) Name() string { return c.embedder.Name() }

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Embed implements Embedder. Only the misses are sent to the wrapped
// embedder, in a single call, preserving input order.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
	}

	vectors := make([][]float32, len(texts))
	cached, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warnw("embedding cache read failed, falling back to provider", "error", err.Error())
		cached = nil
	}

	var missIdx []int
	var missTexts []string
	for i := range texts {
		if i < len(cached) {
			if raw, ok := cached[i].(string); ok {
				var vec []float32
				if err := json.Unmarshal([]byte(raw), &vec); err == nil {
					vectors[i] = vec
					continue
				}
				logger.Warnw("dropping corrupt cached embedding", "key", keys[i])
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	logger.Debugw("embedding cache lookup", "hits", len(texts)-len(missIdx), "misses", len(missIdx))
	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.embedder.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, errors.New("embedder returned a different number of vectors than texts")
	}

	pipe := c.redis.Pipeline()
	for j, i := range missIdx {
		vectors[i] = fresh[j]
		data, err := json.Marshal(fresh[j])
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[i], data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warnw("failed to cache embeddings", "error", err.Error())
	}
	return vectors, nil
}

var _ Embedder = (*CachedEmbedder)(nil)
