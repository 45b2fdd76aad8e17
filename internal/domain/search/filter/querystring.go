package filter

import (
	"net/url"
	"strings"
)

// queryString builds an ordered, escaped "&k=v" fragment.
// url.Values.Encode sorts keys, which would lose the per-facet grouping.
type queryString struct {
	b strings.Builder
}

func (q *queryString) add(key, value string) {
	q.b.WriteByte('&')
	q.b.WriteString(url.QueryEscape(key))
	q.b.WriteByte('=')
	q.b.WriteString(url.QueryEscape(value))
}

func (q *queryString) String() string {
	return q.b.String()
}

// ParseApplied parses a fragment produced by Translate back into facet names and parameters.
func ParseApplied(applied string) ([]string, url.Values, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(applied, "&"))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // url parse error is self-describing
	}
	return values[ParamName], values, nil
}
