package chi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex   = "index.html"
	pageResults = "results.html"
	pageError   = "error.html"
)

const searchPath = "/search/query"

// facetTitles names the facets whose field name reads poorly.
var facetTitles = map[string]string{
	query.AggRegularPrice: "Price",
}

var titleCaser = cases.Title(language.English)

// facetTitle returns the human-readable facet name: "missing_images" -> "Missing Images".
func facetTitle(name string) string {
	if t, ok := facetTitles[name]; ok {
		return t
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// highlight escapes an engine highlight fragment, keeping only its <em> markers.
func highlight(fragment string) template.HTML {
	esc := template.HTMLEscapeString(fragment)
	esc = strings.ReplaceAll(esc, "&lt;em&gt;", "<em>")
	esc = strings.ReplaceAll(esc, "&lt;/em&gt;", "</em>")
	return template.HTML(esc) //nolint:gosec // everything but <em> is escaped
}

type pages struct {
	set map[string]*template.Template
}

func newPages() *pages {
	funcs := template.FuncMap{
		"facetTitle": facetTitle,
	}
	p := &pages{set: make(map[string]*template.Template)}
	for _, name := range []string{pageIndex, pageResults, pageError} {
		p.set[name] = template.Must(template.New(name).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return p
}

func (p *pages) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.set[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type indexPage struct {
	Query   string
	Sort    string
	SortDir string
}

type errorPage struct {
	Query   string
	Sort    string
	SortDir string
	Status  int
	Message string
}

type resultsPage struct {
	Query          string
	Sort           string
	SortDir        string
	Took           int
	Total          int64
	Hits           []hitView
	Facets         []facetView
	MissingImages  int64
	Applied        []appliedView
	AppliedFilters string
}

type hitView struct {
	ID       string
	Name     template.HTML
	Price    string
	Image    string
	Snippets []template.HTML
}

type facetView struct {
	Name    string
	Buckets []bucketView
}

type bucketView struct {
	Label string
	Count int64
	Href  template.URL
}

type appliedView struct {
	Label      string
	RemoveHref template.URL
}

func newResultsPage(req request.Request, out searchuc.Outcome) resultsPage {
	base := baseHref(req)
	resp := out.Response

	page := resultsPage{
		Query:          req.Query(),
		Sort:           req.Sort(),
		SortDir:        string(req.SortDir()),
		Took:           resp.Took,
		Total:          resp.Total,
		Hits:           make([]hitView, 0, len(resp.Hits)),
		AppliedFilters: out.Filters.Applied,
	}

	for _, h := range resp.Hits {
		page.Hits = append(page.Hits, newHitView(h))
	}

	if agg, ok := resp.Aggregations[query.AggRegularPrice]; ok {
		page.Facets = append(page.Facets, priceFacet(base, out.Specs, agg))
	}
	if agg, ok := resp.Aggregations[query.AggDepartment]; ok {
		page.Facets = append(page.Facets, termsFacet(base, out.Specs, query.AggDepartment, agg))
	}
	if agg, ok := resp.Aggregations[query.AggMissingImages]; ok && agg.DocCount != nil {
		page.MissingImages = *agg.DocCount
	}

	page.Applied = appliedViews(base, out.Specs)
	return page
}

// baseHref links back to the search with the same text and sort, without filters.
func baseHref(req request.Request) string {
	v := url.Values{}
	v.Set(paramQuery, req.Query())
	v.Set(paramSort, req.Sort())
	v.Set(paramSortDir, string(req.SortDir()))
	return searchPath + "?" + v.Encode()
}

func newHitView(h result.Hit) hitView {
	v := hitView{
		ID:    h.ID,
		Name:  template.HTML(template.HTMLEscapeString(h.Field("name"))), //nolint:gosec // escaped
		Price: h.Field("regularPrice"),
		Image: h.Field("image"),
	}
	if frags := h.Highlight["name"]; len(frags) > 0 {
		v.Name = highlight(frags[0])
	}
	for _, field := range query.TextFields[1:] {
		for _, frag := range h.Highlight[field] {
			v.Snippets = append(v.Snippets, highlight(frag))
		}
	}
	return v
}

func priceFacet(base string, active []filter.Spec, agg result.Aggregation) facetView {
	f := facetView{Name: query.AggRegularPrice}
	for _, b := range agg.Buckets {
		spec := filter.Spec{
			Name:        query.AggRegularPrice,
			Type:        filter.TypeRange,
			DisplayName: facetTitle(query.AggRegularPrice),
			From:        formatBound(b.From),
			To:          formatBound(b.To),
		}
		f.Buckets = append(f.Buckets, bucketView{
			Label: b.Key,
			Count: b.DocCount,
			Href:  facetHref(base, active, spec),
		})
	}
	return f
}

func termsFacet(base string, active []filter.Spec, name string, agg result.Aggregation) facetView {
	f := facetView{Name: name}
	for _, b := range agg.Buckets {
		key := b.Key
		spec := filter.Spec{
			Name:        name,
			Type:        filter.TypeTerms,
			DisplayName: facetTitle(name),
			Key:         &key,
		}
		f.Buckets = append(f.Buckets, bucketView{
			Label: b.Key,
			Count: b.DocCount,
			Href:  facetHref(base, active, spec),
		})
	}
	return f
}

// facetHref narrows the current search by spec. An active selection on the
// same facet is replaced, not stacked.
func facetHref(base string, active []filter.Spec, spec filter.Spec) template.URL {
	next := make([]filter.Spec, 0, len(active)+1)
	for _, s := range active {
		if s.Name != spec.Name {
			next = append(next, s)
		}
	}
	next = append(next, spec)
	return template.URL(base + filter.Translate(next).Applied) //nolint:gosec // built from escaped parts
}

// appliedViews lists the active facets, each with a link that drops it.
func appliedViews(base string, specs []filter.Spec) []appliedView {
	var views []appliedView
	for i, s := range specs {
		label, ok := s.Display()
		if !ok {
			continue
		}
		rest := make([]filter.Spec, 0, len(specs)-1)
		rest = append(rest, specs[:i]...)
		rest = append(rest, specs[i+1:]...)
		views = append(views, appliedView{
			Label:      label,
			RemoveHref: template.URL(base + filter.Translate(rest).Applied), //nolint:gosec // built from escaped parts
		})
	}
	return views
}

func formatBound(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	return &s
}
