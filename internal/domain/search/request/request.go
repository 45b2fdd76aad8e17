package request

import (
	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
)

// Request is a normalized end-user search: free text, sort choice and facet selections.
type Request struct {
	query   string
	sort    string
	sortDir query.SortDirection
	filters []filter.Spec
}

// New normalizes user input. It never fails:
// empty query matches everything, empty sort is relevance, direction defaults to descending.
func New(q, sort, sortDir string, filters []filter.Spec) Request {
	if q == "" {
		q = query.MatchAll
	}
	if sort == "" {
		sort = query.DefaultSortField
	}
	return Request{
		query:   q,
		sort:    sort,
		sortDir: query.ParseSortDirection(sortDir),
		filters: filters,
	}
}

// Query returns the free-text query.
func (r Request) Query() string { return r.query }

// Sort returns the sort field.
func (r Request) Sort() string { return r.sort }

// SortDir returns the sort direction.
func (r Request) SortDir() query.SortDirection { return r.sortDir }

// Filters returns the facet selections in request order.
func (r Request) Filters() []filter.Spec { return r.filters }
