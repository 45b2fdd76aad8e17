package shopsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

type fakeSearch struct {
	got request.Request
	out searchuc.Outcome
	err error
}

func (f *fakeSearch) Search(_ context.Context, req request.Request) (searchuc.Outcome, error) {
	f.got = req
	return f.out, f.err
}

type fakeHealth struct {
	report healthuc.Report
}

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newFakeClient(s searchService, h healthService) *Client {
	obs, _ := newObserver(nil, nil)
	return &Client{search: s, health: h, builder: query.NewBuilder(), obs: obs}
}

func TestSearch_TranslatesQuery(t *testing.T) {
	fs := &fakeSearch{}
	c := newFakeClient(fs, nil)

	_, err := c.Search(context.Background(), Query{
		Text:    "tv",
		Sort:    "name",
		SortDir: "sideways",
		Filters: []Filter{
			TermFilter("department", "", "AUDIO"),
			RangeFilter("regularPrice", "Price", "", "100"),
		},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if fs.got.Query() != "tv" || fs.got.Sort() != "name" || fs.got.SortDir() != query.Desc {
		t.Errorf("request = %q %q %q", fs.got.Query(), fs.got.Sort(), fs.got.SortDir())
	}
	specs := fs.got.Filters()
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].DisplayName != "department" {
		t.Errorf("empty display name should fall back to facet name, got %q", specs[0].DisplayName)
	}
	if specs[1].Type != filter.TypeRange || specs[1].From != nil || *specs[1].To != "100" {
		t.Errorf("range spec = %+v", specs[1])
	}
}

func TestSearch_Error(t *testing.T) {
	fs := &fakeSearch{err: ErrEngineUnavailable}
	c := newFakeClient(fs, nil)

	if _, err := c.Search(context.Background(), Query{}); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestToResults(t *testing.T) {
	score := 1.5
	missing := int64(4)
	to := 100.0
	out := toResults(searchuc.Outcome{
		Filters: filter.Translation{Display: []string{"Price: $None - $100"}, Applied: "&filter.name=regularPrice"},
		Response: result.Response{
			Took:  12,
			Total: 9,
			Hits: []result.Hit{{
				ID:     "7",
				Score:  &score,
				Source: map[string]any{"name": "Speaker"},
			}},
			Aggregations: map[string]result.Aggregation{
				"regularPrice":   {Buckets: []result.Bucket{{Key: "$", To: &to, DocCount: 5}}},
				"department":     {Buckets: []result.Bucket{}},
				"missing_images": {DocCount: &missing},
			},
		},
	})

	if out.Total != 9 || out.Took.Milliseconds() != 12 {
		t.Errorf("Total/Took = %d/%v", out.Total, out.Took)
	}
	if len(out.Hits) != 1 || out.Hits[0].Name != "Speaker" || *out.Hits[0].Score != 1.5 {
		t.Errorf("hits = %+v", out.Hits)
	}
	if b := out.Facets["regularPrice"]; len(b) != 1 || b[0].Count != 5 || *b[0].To != 100 {
		t.Errorf("price facet = %+v", b)
	}
	if b, ok := out.Facets["department"]; !ok || len(b) != 0 {
		t.Errorf("empty department facet should be present, got %+v", b)
	}
	if out.MissingImages != 4 {
		t.Errorf("MissingImages = %d", out.MissingImages)
	}
	if out.AppliedFilters != "&filter.name=regularPrice" || out.DisplayFilters[0] != "Price: $None - $100" {
		t.Errorf("filters = %q %q", out.DisplayFilters, out.AppliedFilters)
	}
}

func TestHealth_Degraded(t *testing.T) {
	c := newFakeClient(nil, fakeHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.ComponentEngine: healthuc.CheckOK,
			healthuc.ComponentCache:  healthuc.CheckError,
		},
	}})

	report, err := c.Health(context.Background())
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("expected errUnhealthy, got %v", err)
	}
	if report.Status != "degraded" || report.Checks["cache"] != "error" {
		t.Errorf("report = %+v", report)
	}
}
