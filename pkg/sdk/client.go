package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db/redis"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/repository/respcache"
	"github.com/kailas-cloud/shopsearch/internal/transport/elastic"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

const (
	defaultIndex    = "bbuy_products"
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = time.Minute
	cacheKeyPrefix  = "shopsearch:"
	cacheReadyLimit = 10 * time.Second
)

// searchService is the subset of the search use case the client calls.
type searchService interface {
	Search(ctx context.Context, req request.Request) (searchuc.Outcome, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is an embedded product search client.
// It is safe for concurrent use.
type Client struct {
	search  searchService
	health  healthService
	builder *query.Builder
	store   *redis.Store
	obs     *observer
}

// New connects to the engine (and the cache, when configured) and returns a ready client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:      defaultIndex,
		timeout:    defaultTimeout,
		cacheTTL:   defaultCacheTTL,
		resultSize: query.DefaultSize,
		phraseSlop: query.DefaultPhraseSlop,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.engineAddrs) == 0 {
		return nil, errors.New("shopsearch: WithElasticsearch or WithOpenSearch is required")
	}
	if cfg.apiKey != "" && cfg.username != "" {
		return nil, errors.New("shopsearch: WithAPIKey and WithBasicAuth are mutually exclusive")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("shopsearch: %w", err)
	}

	engine, err := elastic.NewEngine(&elastic.Config{
		Product:   cfg.product,
		Addrs:     cfg.engineAddrs,
		Index:     cfg.index,
		Username:  cfg.username,
		Password:  cfg.password,
		APIKey:    cfg.apiKey,
		Timeout:   cfg.timeout,
		Transport: cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("shopsearch: %w", err)
	}

	builder := query.NewBuilder().WithSize(cfg.resultSize).WithPhraseSlop(cfg.phraseSlop)

	c := &Client{builder: builder, obs: obs}

	var searchEngine searchuc.Engine = engine
	var cache healthuc.CachePinger
	if len(cfg.cacheAddrs) > 0 {
		store, err := redis.NewStore(redis.Config{
			Addrs:    cfg.cacheAddrs,
			Username: cfg.cacheUsername,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("shopsearch: connect cache: %w", err)
		}
		if err := store.WaitForReady(ctx, cacheReadyLimit); err != nil {
			store.Close()
			return nil, fmt.Errorf("shopsearch: cache not ready: %w", err)
		}
		c.store = store
		cache = store
		searchEngine = respcache.New(engine, store, cfg.cacheTTL, cacheKeyPrefix, metrics.SearchCacheTotal, zap.NewNop())
	}

	c.search = searchuc.New(searchEngine, builder)
	c.health = healthuc.New(engine, cache)
	return c, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() error {
	if c.store != nil {
		c.store.Close()
	}
	return nil
}
