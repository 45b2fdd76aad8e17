package filter

import (
	"encoding/json"
	"errors"
	"regexp"
)

// KeywordSuffix addresses the exact-match sub-field of a text field.
const KeywordSuffix = ".keyword"

// Clause is a single engine filter predicate. Exactly one field is set.
type Clause struct {
	Range *RangeClause
	Term  *TermClause
}

// RangeClause matches documents whose field lies within [GTE, LTE]. Nil bounds are open.
type RangeClause struct {
	Field string
	GTE   *string
	LTE   *string
}

// TermClause matches documents whose field equals Value exactly.
type TermClause struct {
	Field string
	Value *string
}

// MarshalJSON renders the clause in query DSL form:
// {"range":{field:{"gte":..,"lte":..}}} or {"term":{field:value}}.
func (c Clause) MarshalJSON() ([]byte, error) {
	switch {
	case c.Range != nil:
		return json.Marshal(map[string]any{
			"range": map[string]any{
				c.Range.Field: map[string]any{
					"gte": boundValue(c.Range.GTE),
					"lte": boundValue(c.Range.LTE),
				},
			},
		})
	case c.Term != nil:
		var v any
		if c.Term.Value != nil {
			v = *c.Term.Value
		}
		return json.Marshal(map[string]any{
			"term": map[string]any{c.Term.Field: v},
		})
	default:
		return nil, errors.New("filter: empty clause")
	}
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// boundValue emits numeric-looking bounds as JSON numbers and anything else verbatim as a string.
func boundValue(v *string) any {
	if v == nil {
		return nil
	}
	if jsonNumber.MatchString(*v) {
		return json.Number(*v)
	}
	return *v
}
