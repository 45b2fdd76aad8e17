package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Engine runs product queries against an Elasticsearch or OpenSearch index.
type Engine struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  *zap.Logger
}

// Product names the cluster flavor.
type Product string

const (
	ProductElasticsearch Product = "elasticsearch"
	ProductOpenSearch    Product = "opensearch"
)

// Config holds the engine connection settings.
type Config struct {
	// Product selects the cluster flavor. Empty means Elasticsearch.
	Product Product

	Addrs    []string
	Index    string
	Username string
	Password string
	APIKey   string
	Timeout  time.Duration
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// NewEngine creates an engine client. It does not contact the cluster.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg.Index == "" {
		return nil, errors.New("index is required")
	}

	transport := cfg.Transport
	switch cfg.Product {
	case "", ProductElasticsearch:
	case ProductOpenSearch:
		if transport == nil {
			transport = http.DefaultTransport
		}
		transport = openSearchTransport{next: transport}
	default:
		return nil, fmt.Errorf("unknown engine product %q", cfg.Product)
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		client:  client,
		index:   cfg.Index,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Search sends the query body to the index and decodes the response.
func (e *Engine) Search(ctx context.Context, req *query.Request) (result.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return result.Response{}, fmt.Errorf("marshal query: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		e.observe("error", start)
		return result.Response{}, fmt.Errorf("search request: %v: %w", err, domain.ErrEngineUnavailable)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		e.observe("error", start)
		return result.Response{}, fmt.Errorf("read search response: %v: %w", err, domain.ErrEngineUnavailable)
	}

	if res.IsError() {
		engineErr := domain.NewEngineError(res.StatusCode, extractReason(data))
		if errors.Is(engineErr, domain.ErrEngineRejected) {
			e.observe("rejected", start)
		} else {
			e.observe("error", start)
		}
		e.logger.Warn("Search engine returned error",
			zap.String("index", e.index),
			zap.Int("status", res.StatusCode),
			zap.Error(engineErr),
		)
		return result.Response{}, engineErr
	}

	e.observe("success", start)

	resp, err := result.Decode(data)
	if err != nil {
		return result.Response{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidResponse)
	}
	return resp, nil
}

// HealthCheck pings the cluster.
func (e *Engine) HealthCheck(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping: status %d", res.StatusCode)
	}
	return nil
}

func (e *Engine) observe(status string, start time.Time) {
	metrics.EngineRequestsTotal.WithLabelValues(status).Inc()
	metrics.EngineRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// extractReason pulls error.reason (or a plain string error) out of an engine error body.
func extractReason(body []byte) string {
	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil || len(parsed.Error) == 0 {
		return ""
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(parsed.Error, &detail) == nil && detail.Reason != "" {
		if detail.Type != "" {
			return detail.Type + ": " + detail.Reason
		}
		return detail.Reason
	}

	var plain string
	if json.Unmarshal(parsed.Error, &plain) == nil {
		return plain
	}
	return ""
}
