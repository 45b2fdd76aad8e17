package shopsearch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// Query describes one search. Zero values mean match-all, relevance, descending.
type Query struct {
	Text    string
	Sort    string
	SortDir string
	Filters []Filter
}

// Filter is one facet selection.
type Filter struct {
	Name        string
	Type        string
	DisplayName string
	From        *string
	To          *string
	Key         *string
}

// RangeFilter selects [from, to] on a numeric field. An empty bound is open.
func RangeFilter(name, displayName, from, to string) Filter {
	f := Filter{Name: name, Type: string(filter.TypeRange), DisplayName: displayName}
	if from != "" {
		f.From = &from
	}
	if to != "" {
		f.To = &to
	}
	return f
}

// TermFilter selects an exact keyword value.
func TermFilter(name, displayName, key string) Filter {
	return Filter{Name: name, Type: string(filter.TypeTerms), DisplayName: displayName, Key: &key}
}

// Results is a decoded search response.
type Results struct {
	Total int64
	Took  time.Duration
	Hits  []Hit
	// Facets maps aggregation name to its buckets.
	Facets map[string][]Bucket
	// MissingImages counts matches without an image.
	MissingImages int64
	// DisplayFilters holds one human-readable string per applied filter.
	DisplayFilters []string
	// AppliedFilters is the query-string fragment that reproduces the filters.
	AppliedFilters string
	// Raw is the engine response body.
	Raw json.RawMessage
}

// Hit is one matched product.
type Hit struct {
	ID         string
	Score      *float64
	Name       string
	Source     map[string]any
	Highlights map[string][]string
}

// Bucket is one facet value.
type Bucket struct {
	Key   string
	From  *float64
	To    *float64
	Count int64
}

// Search runs q against the engine.
func (c *Client) Search(ctx context.Context, q Query) (Results, error) {
	var out Results
	err := c.obs.do(ctx, "search", func() error {
		o, err := c.search.Search(ctx, q.request())
		if err != nil {
			return err
		}
		out = toResults(o)
		return nil
	})
	return out, err
}

// Plan returns the engine request body for q without sending it.
func (c *Client) Plan(q Query) (json.RawMessage, error) {
	req, _ := searchuc.Plan(c.builder, q.request())
	return json.Marshal(req)
}

func (q Query) request() request.Request {
	specs := make([]filter.Spec, 0, len(q.Filters))
	for _, f := range q.Filters {
		specs = append(specs, f.spec())
	}
	return request.New(q.Text, q.Sort, q.SortDir, specs)
}

func (f Filter) spec() filter.Spec {
	s := filter.Spec{
		Name:        f.Name,
		Type:        filter.Type(f.Type),
		DisplayName: f.DisplayName,
		From:        f.From,
		To:          f.To,
		Key:         f.Key,
	}
	if s.DisplayName == "" {
		s.DisplayName = s.Name
	}
	return s
}

func toResults(o searchuc.Outcome) Results {
	resp := o.Response
	res := Results{
		Total:          resp.Total,
		Took:           time.Duration(resp.Took) * time.Millisecond,
		Hits:           make([]Hit, 0, len(resp.Hits)),
		Facets:         make(map[string][]Bucket, len(resp.Aggregations)),
		DisplayFilters: o.Filters.Display,
		AppliedFilters: o.Filters.Applied,
		Raw:            resp.Raw,
	}
	for _, h := range resp.Hits {
		res.Hits = append(res.Hits, Hit{
			ID:         h.ID,
			Score:      h.Score,
			Name:       h.Field("name"),
			Source:     h.Source,
			Highlights: h.Highlight,
		})
	}
	for name, agg := range resp.Aggregations {
		if agg.DocCount != nil && agg.Buckets == nil {
			if name == "missing_images" {
				res.MissingImages = *agg.DocCount
			}
			continue
		}
		res.Facets[name] = toBuckets(agg.Buckets)
	}
	return res
}

func toBuckets(in []result.Bucket) []Bucket {
	out := make([]Bucket, 0, len(in))
	for _, b := range in {
		out = append(out, Bucket{Key: b.Key, From: b.From, To: b.To, Count: b.DocCount})
	}
	return out
}
