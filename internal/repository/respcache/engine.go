package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

const keyNamespace = "resp:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Engine is the wrapped search engine.
type Engine interface {
	Search(ctx context.Context, req *query.Request) (result.Response, error)
}

// CachedEngine caches raw engine responses keyed by the request payload.
// Store failures degrade to a miss and never fail the search.
type CachedEngine struct {
	inner      Engine
	store      store
	ttl        time.Duration
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Engine,
	s store,
	ttl time.Duration,
	keyPrefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEngine {
	return &CachedEngine{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		prefix:     keyPrefix + keyNamespace,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached response or calls the inner engine and caches its raw body.
func (c *CachedEngine) Search(ctx context.Context, req *query.Request) (result.Response, error) {
	key, err := c.cacheKey(req)
	if err != nil {
		c.logger.Warn("Failed to build cache key", zap.Error(err))
		return c.search(ctx, req)
	}

	if resp, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return resp, nil
	}

	c.incCache("miss")

	resp, err := c.search(ctx, req)
	if err != nil {
		return result.Response{}, err
	}

	c.putToCache(ctx, key, resp.Raw)
	return resp, nil
}

func (c *CachedEngine) search(ctx context.Context, req *query.Request) (result.Response, error) {
	resp, err := c.inner.Search(ctx, req)
	if err != nil {
		return result.Response{}, fmt.Errorf("search engine: %w", err)
	}
	return resp, nil
}

func (c *CachedEngine) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

func (c *CachedEngine) cacheKey(req *query.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	h := sha256.Sum256(payload)
	return c.prefix + hex.EncodeToString(h[:]), nil
}

func (c *CachedEngine) getFromCache(ctx context.Context, key string) (result.Response, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return result.Response{}, false
	}
	if len(data) == 0 {
		return result.Response{}, false
	}

	resp, err := result.Decode(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached response", zap.String("key", key), zap.Error(err))
		}
		return result.Response{}, false
	}
	return resp, true
}

func (c *CachedEngine) putToCache(ctx context.Context, key string, raw []byte) {
	if len(raw) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
