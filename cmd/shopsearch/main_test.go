package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/shopsearch/internal/catalog"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
)

func TestPrintQuery(t *testing.T) {
	var buf bytes.Buffer
	fragment := "&filter.name=department&department.type=terms&department.displayName=Department&department.key=TV"

	if err := printQuery(&buf, query.NewBuilder(), "hdmi", "", "asc", fragment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Request struct {
			Size  int `json:"size"`
			Query struct {
				Bool struct {
					Filter []map[string]any `json:"filter"`
				} `json:"bool"`
			} `json:"query"`
			Sort []map[string]string `json:"sort"`
		} `json:"request"`
		DisplayFilters []string `json:"display_filters"`
		AppliedFilters string   `json:"applied_filters"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, buf.String())
	}

	if out.Request.Size != 10 {
		t.Errorf("size = %d", out.Request.Size)
	}
	if len(out.Request.Query.Bool.Filter) != 1 {
		t.Errorf("filter = %v", out.Request.Query.Bool.Filter)
	}
	if out.Request.Sort[0]["_score"] != "asc" {
		t.Errorf("sort = %v", out.Request.Sort)
	}
	if len(out.DisplayFilters) != 1 || out.DisplayFilters[0] != "Department: TV" {
		t.Errorf("display_filters = %v", out.DisplayFilters)
	}
	if out.AppliedFilters != fragment {
		t.Errorf("applied fragment should round-trip, got %q", out.AppliedFilters)
	}
}

func TestPrintQuery_BadFragment(t *testing.T) {
	if err := printQuery(&bytes.Buffer{}, query.NewBuilder(), "", "", "", "&a=%zz"); err == nil {
		t.Fatal("expected error for malformed fragment")
	}
}

func TestWriteTrainingData(t *testing.T) {
	in := t.TempDir()
	xml := `<products>
  <product><name>Sony TV</name><categoryPath><category><id>tv</id></category></categoryPath></product>
  <product><name>LG TV</name><categoryPath><category><id>tv</id></category></categoryPath></product>
  <product><name>Cable</name><categoryPath><category><id>cables</id></category></categoryPath></product>
</products>`
	if err := os.WriteFile(filepath.Join(in, "products.xml"), []byte(xml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := filepath.Join(t.TempDir(), "nested", "train.fasttext")

	err := writeTrainingData(context.Background(), zap.NewNop(), in, out, catalog.Options{MinPerCategory: 2, MaxPerCategory: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got, want := string(data), "__label__tv Sony TV\n__label__tv LG TV\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search/query", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal_error") {
		t.Errorf("body = %s", rr.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic should be logged")
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var ctxLogger *zap.Logger
	h := wideEventMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search/query?query=tv", http.NoBody))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["query"] != "query=tv" {
		t.Errorf("query field = %v", fields["query"])
	}
	if ctxLogger == nil {
		t.Error("request logger should be placed in the context")
	}
}
