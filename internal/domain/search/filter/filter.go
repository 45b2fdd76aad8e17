package filter

import (
	"fmt"
)

// Type is the facet kind carried in the "<name>.type" parameter.
type Type string

const (
	// TypeRange selects a numeric range facet (from/to bounds).
	TypeRange Type = "range"
	// TypeTerms selects a single-term facet (key).
	TypeTerms Type = "terms"
)

// IsKnown reports whether the type produces a clause.
func (t Type) IsKnown() bool {
	return t == TypeRange || t == TypeTerms
}

// ParamName is the repeated query-string parameter listing active facets.
const ParamName = "filter.name"

// Companion parameter suffixes, appended to the facet name.
const (
	suffixType        = ".type"
	suffixDisplayName = ".displayName"
	suffixFrom        = ".from"
	suffixTo          = ".to"
	suffixKey         = ".key"
)

// missingValue is how an absent bound or key appears in display strings.
const missingValue = "None"

// Params is read access to request parameters. url.Values satisfies it.
type Params interface {
	Get(key string) string
	Has(key string) bool
}

// Spec is one facet selection reconstructed from request parameters.
type Spec struct {
	Name        string
	Type        Type
	DisplayName string

	// Range bounds, nil when unbounded.
	From *string
	To   *string

	// Selected term, nil when absent.
	Key *string
}

// ParseSpecs reads the companion parameters of every named facet, in order.
// It never fails: absent parameters become nil or defaults.
func ParseSpecs(names []string, params Params) []Spec {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		specs = append(specs, parseSpec(name, params))
	}
	return specs
}

func parseSpec(name string, params Params) Spec {
	s := Spec{
		Name:        name,
		Type:        Type(params.Get(name + suffixType)),
		DisplayName: params.Get(name + suffixDisplayName),
	}
	if s.DisplayName == "" {
		s.DisplayName = name
	}

	switch s.Type {
	case TypeRange:
		s.From = nonEmpty(params.Get(name + suffixFrom))
		s.To = nonEmpty(params.Get(name + suffixTo))
	case TypeTerms:
		if params.Has(name + suffixKey) {
			key := params.Get(name + suffixKey)
			s.Key = &key
		}
	}
	return s
}

// Clause returns the engine predicate for the facet. ok is false for unknown types.
func (s Spec) Clause() (c Clause, ok bool) {
	switch s.Type {
	case TypeRange:
		return Clause{Range: &RangeClause{Field: s.Name, GTE: s.From, LTE: s.To}}, true
	case TypeTerms:
		return Clause{Term: &TermClause{Field: s.Name + KeywordSuffix, Value: s.Key}}, true
	default:
		return Clause{}, false
	}
}

// Display returns the human-readable form of the facet. ok is false for unknown types.
func (s Spec) Display() (string, bool) {
	switch s.Type {
	case TypeRange:
		return fmt.Sprintf("%s: $%s - $%s", s.DisplayName, orMissing(s.From), orMissing(s.To)), true
	case TypeTerms:
		return fmt.Sprintf("%s: %s", s.DisplayName, orMissing(s.Key)), true
	default:
		return "", false
	}
}

// encode appends the parameters that reproduce this facet.
// Unknown types still carry name, type and displayName.
func (s Spec) encode(qs *queryString) {
	qs.add(ParamName, s.Name)
	qs.add(s.Name+suffixType, string(s.Type))
	qs.add(s.Name+suffixDisplayName, s.DisplayName)

	switch s.Type {
	case TypeRange:
		if s.From != nil {
			qs.add(s.Name+suffixFrom, *s.From)
		}
		if s.To != nil {
			qs.add(s.Name+suffixTo, *s.To)
		}
	case TypeTerms:
		if s.Key != nil {
			qs.add(s.Name+suffixKey, *s.Key)
		}
	}
}

// Translation is the result of turning facet selections into engine and UI forms.
type Translation struct {
	// Clauses are the engine filter predicates, ANDed by the query.
	Clauses []Clause
	// Display holds one string per clause, for the "applied filters" list.
	Display []string
	// Applied is a query-string fragment ("&k=v&...") reproducing every input facet.
	Applied string
}

// Translate converts facet specs into clauses, display strings and a link fragment.
// Output order follows input order.
func Translate(specs []Spec) Translation {
	t := Translation{
		Clauses: make([]Clause, 0, len(specs)),
		Display: make([]string, 0, len(specs)),
	}

	var qs queryString
	for _, s := range specs {
		s.encode(&qs)

		c, ok := s.Clause()
		if !ok {
			continue
		}
		t.Clauses = append(t.Clauses, c)
		d, _ := s.Display()
		t.Display = append(t.Display, d)
	}
	t.Applied = qs.String()
	return t
}

// FromParams parses and translates the named facets in one step.
func FromParams(names []string, params Params) Translation {
	return Translate(ParseSpecs(names, params))
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func orMissing(v *string) string {
	if v == nil {
		return missingValue
	}
	return *v
}
