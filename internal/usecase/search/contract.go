package search

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Engine executes engine requests.
type Engine interface {
	Search(ctx context.Context, req *query.Request) (result.Response, error)
}
