package shopsearch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/shopsearch/internal/transport/elastic"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	product     elastic.Product
	engineAddrs []string
	index       string
	username    string
	password    string
	apiKey      string
	timeout     time.Duration
	transport   http.RoundTripper

	cacheAddrs    []string
	cacheUsername string
	cachePassword string
	cacheTTL      time.Duration

	resultSize int
	phraseSlop int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the Elasticsearch node URLs.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.product = elastic.ProductElasticsearch
		c.engineAddrs = addrs
	})
}

// WithOpenSearch sets the OpenSearch node URLs.
func WithOpenSearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.product = elastic.ProductOpenSearch
		c.engineAddrs = addrs
	})
}

// WithIndex sets the product index. Defaults to "bbuy_products".
func WithIndex(index string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = index
	})
}

// WithBasicAuth authenticates to the engine with a username and password.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithAPIKey authenticates to the engine with an API key.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithTimeout bounds each engine request.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPTransport replaces the engine HTTP transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithCache caches engine responses in Valkey/Redis for ttl.
func WithCache(addr string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cacheTTL = ttl
	})
}

// WithCacheAuth authenticates to the cache. An empty username uses the default user.
func WithCacheAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheUsername = username
		c.cachePassword = password
	})
}

// WithResultSize sets the number of hits per search. Default: 10.
func WithResultSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.resultSize = n
	})
}

// WithPhraseSlop sets the query_string phrase slop. Default: 3.
func WithPhraseSlop(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.phraseSlop = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
