package query

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
)

// Query defaults.
const (
	DefaultSize       = 10
	DefaultPhraseSlop = 3
	// DefaultSortField sorts by relevance.
	DefaultSortField = "_score"
	// MatchAll is the query_string that matches every document.
	MatchAll = "*"
)

// TextFields are the product fields searched by free text and highlighted in results.
var TextFields = []string{"name", "shortDescription", "longDescription"}

// SortDirection is the sort order sent to the engine.
type SortDirection string

const (
	// Asc sorts ascending.
	Asc SortDirection = "asc"
	// Desc sorts descending.
	Desc SortDirection = "desc"
)

// ParseSortDirection accepts "asc"/"desc" in any case; anything else is Desc.
func ParseSortDirection(s string) SortDirection {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc
	default:
		return Desc
	}
}

// Request is the engine search payload.
type Request struct {
	Size      int          `json:"size"`
	Query     Query        `json:"query"`
	Sort      []Sort       `json:"sort"`
	Highlight Highlight    `json:"highlight"`
	Aggs      Aggregations `json:"aggs"`
}

// Query is the top-level query clause.
type Query struct {
	Bool BoolQuery `json:"bool"`
}

// BoolQuery ANDs the free-text match with every filter clause.
type BoolQuery struct {
	Must   Must            `json:"must"`
	Filter []filter.Clause `json:"filter"`
}

// Must wraps the free-text clause.
type Must struct {
	QueryString QueryString `json:"query_string"`
}

// QueryString is a query_string match over several fields.
type QueryString struct {
	Fields     []string `json:"fields"`
	Query      string   `json:"query"`
	PhraseSlop int      `json:"phrase_slop"`
}

// Sort orders results by one field.
type Sort struct {
	Field     string
	Direction SortDirection
}

// MarshalJSON renders {field: direction}.
func (s Sort) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]SortDirection{s.Field: s.Direction})
}

// Highlight requests highlighted fragments for the listed fields.
type Highlight struct {
	Fields []string
}

// MarshalJSON renders {"fields":{f1:{},f2:{},...}} in field order.
func (h Highlight) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"fields":{`)
	for i, f := range h.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f)
		if err != nil {
			return nil, err //nolint:wrapcheck // marshalling a string cannot fail
		}
		buf.Write(name)
		buf.WriteString(":{}")
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Builder assembles engine requests. Size and phrase slop are tunable; everything else is fixed.
type Builder struct {
	size       int
	phraseSlop int
}

// NewBuilder creates a builder with the default size and phrase slop.
func NewBuilder() *Builder {
	return &Builder{size: DefaultSize, phraseSlop: DefaultPhraseSlop}
}

// WithSize overrides the result size. Non-positive values are ignored.
func (b *Builder) WithSize(size int) *Builder {
	if size > 0 {
		b.size = size
	}
	return b
}

// WithPhraseSlop overrides the phrase slop. Negative values are ignored.
func (b *Builder) WithPhraseSlop(slop int) *Builder {
	if slop >= 0 {
		b.phraseSlop = slop
	}
	return b
}

// Build assembles the request. An empty sort field means relevance and an empty
// direction means descending. The sort field is passed through uninterpreted.
func (b *Builder) Build(text string, filters []filter.Clause, sortField string, dir SortDirection) *Request {
	if sortField == "" {
		sortField = DefaultSortField
	}
	if dir == "" {
		dir = Desc
	}
	if filters == nil {
		filters = []filter.Clause{}
	}

	return &Request{
		Size: b.size,
		Query: Query{Bool: BoolQuery{
			Must: Must{QueryString: QueryString{
				Fields:     append([]string(nil), TextFields...),
				Query:      text,
				PhraseSlop: b.phraseSlop,
			}},
			Filter: filters,
		}},
		Sort:      []Sort{{Field: sortField, Direction: dir}},
		Highlight: Highlight{Fields: append([]string(nil), TextFields...)},
		Aggs:      DefaultAggregations(),
	}
}

// Build assembles a request with the default builder.
func Build(text string, filters []filter.Clause, sortField string, dir SortDirection) *Request {
	return NewBuilder().Build(text, filters, sortField, dir)
}
