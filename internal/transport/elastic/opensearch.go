package elastic

import "net/http"

const productHeader = "X-Elastic-Product"

// openSearchTransport lets the Elasticsearch client accept OpenSearch nodes.
// The client refuses any 2xx response without the Elastic product header,
// and OpenSearch never sends it.
type openSearchTransport struct {
	next http.RoundTripper
}

func (t openSearchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err //nolint:wrapcheck // transport errors are wrapped by the caller
	}
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	if res.Header.Get(productHeader) == "" {
		res.Header.Set(productHeader, "Elasticsearch")
	}
	return res, nil
}
