package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is a decoded engine search response. Raw keeps the original bytes
// so the response can be cached or passed through unchanged.
type Response struct {
	Took         int
	TimedOut     bool
	Total        int64
	MaxScore     *float64
	Hits         []Hit
	Aggregations map[string]Aggregation
	Raw          json.RawMessage
}

// Hit is a single matched document.
type Hit struct {
	Index     string
	ID        string
	Score     *float64
	Source    map[string]any
	Highlight map[string][]string
}

// Field returns a top-level source field as a string, or "" when absent.
func (h Hit) Field(name string) string {
	v, ok := h.Source[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Aggregation is the result of one aggregation: buckets for range/terms, a count for missing.
type Aggregation struct {
	DocCount *int64
	Buckets  []Bucket
}

// Bucket is one facet value with its document count. From/To are set for range buckets.
type Bucket struct {
	Key      string
	From     *float64
	To       *float64
	DocCount int64
}

type rawResponse struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total    json.RawMessage `json:"total"`
		MaxScore *float64        `json:"max_score"`
		Hits     []struct {
			Index     string              `json:"_index"`
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    map[string]any      `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		DocCount *int64 `json:"doc_count"`
		Buckets  []struct {
			Key      json.RawMessage `json:"key"`
			From     *float64        `json:"from"`
			To       *float64        `json:"to"`
			DocCount int64           `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

// Decode parses an engine response body.
func Decode(data []byte) (Response, error) {
	var raw rawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return Response{}, fmt.Errorf("decode search response: %w", err)
	}

	total, err := decodeTotal(raw.Hits.Total)
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		Took:     raw.Took,
		TimedOut: raw.TimedOut,
		Total:    total,
		MaxScore: raw.Hits.MaxScore,
		Hits:     make([]Hit, 0, len(raw.Hits.Hits)),
		Raw:      append(json.RawMessage(nil), data...),
	}
	for _, h := range raw.Hits.Hits {
		resp.Hits = append(resp.Hits, Hit{
			Index:     h.Index,
			ID:        h.ID,
			Score:     h.Score,
			Source:    h.Source,
			Highlight: h.Highlight,
		})
	}

	if len(raw.Aggregations) > 0 {
		resp.Aggregations = make(map[string]Aggregation, len(raw.Aggregations))
	}
	for name, a := range raw.Aggregations {
		agg := Aggregation{DocCount: a.DocCount}
		for _, b := range a.Buckets {
			agg.Buckets = append(agg.Buckets, Bucket{
				Key:      bucketKey(b.Key),
				From:     b.From,
				To:       b.To,
				DocCount: b.DocCount,
			})
		}
		resp.Aggregations[name] = agg
	}

	return resp, nil
}

// decodeTotal accepts both {"value":n,"relation":..} and a bare number.
func decodeTotal(data json.RawMessage) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	if data[0] == '{' {
		var t struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return 0, fmt.Errorf("decode hits.total: %w", err)
		}
		return t.Value, nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("decode hits.total: %w", err)
	}
	return n, nil
}

// bucketKey renders string keys unquoted and any other key verbatim.
func bucketKey(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}
