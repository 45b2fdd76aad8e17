package search

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Outcome is everything the results page needs: the query sent, the translated
// facets and the engine response.
type Outcome struct {
	Query    *query.Request
	Filters  filter.Translation
	Specs    []filter.Spec
	Response result.Response
}

// Service translates facet selections, builds the engine query and runs it.
type Service struct {
	engine  Engine
	builder *query.Builder
}

// New creates a search service. A nil builder uses the defaults.
func New(engine Engine, builder *query.Builder) *Service {
	if builder == nil {
		builder = query.NewBuilder()
	}
	return &Service{engine: engine, builder: builder}
}

// Plan translates the request's facets and builds the engine query without running it.
func Plan(builder *query.Builder, req request.Request) (*query.Request, filter.Translation) {
	tr := filter.Translate(req.Filters())
	return builder.Build(req.Query(), tr.Clauses, req.Sort(), req.SortDir()), tr
}

// Plan builds the engine query with the service's builder.
func (s *Service) Plan(req request.Request) (*query.Request, filter.Translation) {
	return Plan(s.builder, req)
}

// Search executes a faceted product search.
func (s *Service) Search(ctx context.Context, req request.Request) (Outcome, error) {
	q, tr := s.Plan(req)
	countFilters(req.Filters())

	log := logger.FromContext(ctx)
	if ce := log.Check(zap.DebugLevel, "Engine query"); ce != nil {
		body, _ := json.Marshal(q)
		ce.Write(
			zap.ByteString("query", body),
			zap.Strings("filters", tr.Display),
		)
	}

	resp, err := s.engine.Search(ctx, q)
	if err != nil {
		return Outcome{}, fmt.Errorf("search products: %w", err)
	}

	return Outcome{
		Query:    q,
		Filters:  tr,
		Specs:    req.Filters(),
		Response: resp,
	}, nil
}

func countFilters(specs []filter.Spec) {
	for _, s := range specs {
		label := "other"
		if s.Type.IsKnown() {
			label = string(s.Type)
		}
		metrics.FiltersAppliedTotal.WithLabelValues(label).Inc()
	}
}
