package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// Request parameter names.
const (
	paramQuery   = "query"
	paramSort    = "sort"
	paramSortDir = "sortDir"
	paramFormat  = "format"
)

// errorCode is the machine-readable error code in JSON error bodies.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeUnauthorized      errorCode = "unauthorized"
	codeEngineRejected    errorCode = "engine_rejected"
	codeEngineUnavailable errorCode = "engine_unavailable"
	codeInvalidResponse   errorCode = "invalid_engine_response"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error, msg string) bool

// Server serves the search pages, the health check and metrics.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	pages         *pages
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		pages:  newPages(),
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		s.sentinelHandler(domain.ErrEngineRejected, http.StatusBadRequest, codeEngineRejected),
		s.sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, codeEngineUnavailable),
		s.sentinelHandler(domain.ErrInvalidResponse, http.StatusBadGateway, codeInvalidResponse),
	}
	return s
}

// Routes registers the server's handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Index)
	r.Get("/search/query", s.SearchQuery)
	r.Post("/search/query", s.SearchForm)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", metrics.Handler())
}

// Index handles GET /: the empty search form.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, http.StatusOK, pageIndex, indexPage{SortDir: "desc"})
}

// searchParams are the bound GET parameters of /search/query.
type searchParams struct {
	Query      *string
	Sort       *string
	SortDir    *string
	FilterName *[]string
}

func bindSearchParams(values url.Values) (searchParams, error) {
	var p searchParams
	if err := runtime.BindQueryParameter("form", true, false, paramQuery, values, &p.Query); err != nil {
		return p, err //nolint:wrapcheck // binder errors name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, paramSort, values, &p.Sort); err != nil {
		return p, err //nolint:wrapcheck // binder errors name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, paramSortDir, values, &p.SortDir); err != nil {
		return p, err //nolint:wrapcheck // binder errors name the parameter
	}
	if err := runtime.BindQueryParameter("form", true, false, filter.ParamName, values, &p.FilterName); err != nil {
		return p, err //nolint:wrapcheck // binder errors name the parameter
	}
	return p, nil
}

// SearchQuery handles GET /search/query: free text plus facet filters from the query string.
func (s *Server) SearchQuery(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	params, err := bindSearchParams(values)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	specs := filter.ParseSpecs(deref(params.FilterName), values)
	req := request.New(derefStr(params.Query), derefStr(params.Sort), derefStr(params.SortDir), specs)
	s.runSearch(w, r, req)
}

// SearchForm handles POST /search/query: free text from the search box, no filters.
func (s *Server) SearchForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid form body")
		return
	}

	req := request.New(r.PostFormValue(paramQuery), r.PostFormValue(paramSort), r.PostFormValue(paramSortDir), nil)
	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req request.Request) {
	out, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, searchResponseFromOutcome(req, out))
		return
	}
	s.pages.render(w, http.StatusOK, pageResults, newResultsPage(req, out))
}

// searchResponse is the JSON form of a results page.
type searchResponse struct {
	Query          string          `json:"query"`
	Sort           string          `json:"sort"`
	SortDir        string          `json:"sortDir"`
	DisplayFilters []string        `json:"display_filters"`
	AppliedFilters string          `json:"applied_filters"`
	SearchResponse json.RawMessage `json:"search_response"`
}

func searchResponseFromOutcome(req request.Request, out searchuc.Outcome) searchResponse {
	raw := out.Response.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return searchResponse{
		Query:          req.Query(),
		Sort:           req.Sort(),
		SortDir:        string(req.SortDir()),
		DisplayFilters: out.Filters.Display,
		AppliedFilters: out.Filters.Applied,
		SearchResponse: raw,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// wantsJSON reports whether the client asked for JSON instead of the HTML page.
func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get(paramFormat), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// writeError renders an error as JSON or as the HTML error page, following the request.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code errorCode, message string) {
	if wantsJSON(r) {
		writeJSONError(w, status, code, message)
		return
	}
	s.pages.render(w, status, pageError, errorPage{Status: status, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEngineRejected,
		domain.ErrEngineUnavailable,
		domain.ErrInvalidResponse,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func (s *Server) sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		s.writeError(w, r, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, r, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	s.writeError(w, r, http.StatusInternalServerError, codeInternalError, "internal error")
}

func deref(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
