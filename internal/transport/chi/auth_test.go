package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithKeys(keys []string, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	APIKeyMiddleware(keys)(okHandler()).ServeHTTP(rr, req)
	return rr
}

func TestAPIKeyMiddleware_NoKeys_PassThrough(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		req := httptest.NewRequest(http.MethodGet, "/search/query", http.NoBody)
		if rr := serveWithKeys(keys, req); rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAPIKeyMiddleware_MissingKey_401(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search/query", http.NoBody)
	rr := serveWithKeys([]string{"secret"}, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeUnauthorized {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeUnauthorized)
	}
}

func TestAPIKeyMiddleware_Headers(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"bearer ok", headerAuthorization, "Bearer secret", http.StatusOK},
		{"api key header ok", headerAPIKey, "secret", http.StatusOK},
		{"basic scheme", headerAuthorization, "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong bearer", headerAuthorization, "Bearer wrong", http.StatusUnauthorized},
		{"wrong api key", headerAPIKey, "wrong", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/search/query", http.NoBody)
			req.Header.Set(tt.header, tt.value)
			if rr := serveWithKeys([]string{"secret"}, req); rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAPIKeyMiddleware_MultipleKeys(t *testing.T) {
	for _, key := range []string{"key1", "key2"} {
		req := httptest.NewRequest(http.MethodGet, "/search/query", http.NoBody)
		req.Header.Set(headerAuthorization, "Bearer "+key)
		if rr := serveWithKeys([]string{"key1", "key2"}, req); rr.Code != http.StatusOK {
			t.Errorf("key %s: got %d, want %d", key, rr.Code, http.StatusOK)
		}
	}
}

func TestAPIKeyMiddleware_PublicPaths(t *testing.T) {
	for _, path := range []string{"/", "/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		if rr := serveWithKeys([]string{"secret"}, req); rr.Code != http.StatusOK {
			t.Errorf("public path %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}
