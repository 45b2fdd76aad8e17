package query

import "github.com/kailas-cloud/shopsearch/internal/domain/search/filter"

// Aggregation names, as they appear in engine responses.
const (
	AggRegularPrice  = "regularPrice"
	AggDepartment    = "department"
	AggMissingImages = "missing_images"
)

// Aggregations maps aggregation name to definition.
type Aggregations map[string]Aggregation

// Aggregation is one aggregation definition. Exactly one field is set.
type Aggregation struct {
	Range   *RangeAggregation `json:"range,omitempty"`
	Terms   *FieldAggregation `json:"terms,omitempty"`
	Missing *FieldAggregation `json:"missing,omitempty"`
}

// RangeAggregation buckets a numeric field into fixed ranges.
type RangeAggregation struct {
	Field  string        `json:"field"`
	Ranges []RangeBucket `json:"ranges"`
}

// RangeBucket is a [From, To) bucket; nil bounds are open.
type RangeBucket struct {
	Key  string   `json:"key"`
	From *float64 `json:"from,omitempty"`
	To   *float64 `json:"to,omitempty"`
}

// FieldAggregation targets a single field (terms, missing).
type FieldAggregation struct {
	Field string `json:"field"`
}

func bound(v float64) *float64 { return &v }

// DefaultAggregations returns the facet definitions sent with every request:
// three price buckets, department counts and a count of products without images.
func DefaultAggregations() Aggregations {
	return Aggregations{
		AggRegularPrice: {Range: &RangeAggregation{
			Field: "regularPrice",
			Ranges: []RangeBucket{
				{Key: "$", To: bound(100)},
				{Key: "$$", From: bound(100), To: bound(200)},
				{Key: "$$$", From: bound(200)},
			},
		}},
		AggDepartment:    {Terms: &FieldAggregation{Field: "department" + filter.KeywordSuffix}},
		AggMissingImages: {Missing: &FieldAggregation{Field: "image" + filter.KeywordSuffix}},
	}
}
