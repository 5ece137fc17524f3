// Package chi exposes the indexflow workflows over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/version"
	indexflow "github.com/kailas-cloud/indexflow/pkg/sdk"
)

// StatusClientClosedRequest is returned when the caller went away before the
// workflow finished.
const StatusClientClosedRequest = 499

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeUpstreamError   = "upstream_error"
	CodeInvalidUpstream = "invalid_upstream_response"
	CodeCancelled       = "cancelled"
	CodeTimeout         = "timeout"
	CodeInternalError   = "internal_error"
)

// errorHandler tries to handle a workflow error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Workflows is what the HTTP layer needs from the SDK client.
type Workflows interface {
	Search(ctx context.Context, index string, q indexflow.Query) (indexflow.SearchResult, error)
	SearchDisjunctiveFaceting(
		ctx context.Context, index string, q indexflow.Query, facets []string, refinements indexflow.Refinements,
	) (indexflow.AggregatedResult, error)
	DeleteByQuery(ctx context.Context, index string, q indexflow.Query) (indexflow.DeleteByQueryResult, error)
	WaitTask(ctx context.Context, index string, taskID int64) (indexflow.TaskStatus, error)
	MultipleQueries(
		ctx context.Context, queries []indexflow.IndexedQuery, strategy indexflow.Strategy,
	) ([]indexflow.SearchResult, error)
	WaitTasks(ctx context.Context, tasks map[string]int64) (map[string]indexflow.TaskStatus, error)
	EnableSearchCache(ttl time.Duration)
	DisableSearchCache()
	ClearSearchCache()
	SearchCacheEnabled() bool
	Health(ctx context.Context) indexflow.HealthReport
}

// Server serves the workflow API.
type Server struct {
	wf            Workflows
	logger        *zap.Logger
	build         version.Info
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(wf Workflows, logger *zap.Logger) *Server {
	s := &Server{wf: wf, logger: logger, build: version.Get()}
	s.errorHandlers = []errorHandler{
		cancelledHandler,
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
		sentinelHandler(indexflow.ErrEmptyBatch, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(indexflow.ErrUnknownStrategy, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(indexflow.ErrInvalidResponse, http.StatusBadGateway, CodeInvalidUpstream),
		upstreamStatusHandler,
		sentinelHandler(indexflow.ErrTransport, http.StatusBadGateway, CodeUpstreamError),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/indexes/{index}", func(r chi.Router) {
		r.Use(indexLogger)
		r.Post("/search", s.Search)
		r.Post("/disjunctive-search", s.DisjunctiveSearch)
		r.Post("/delete-by-query", s.DeleteByQuery)
		r.Get("/tasks/{taskID}/wait", s.WaitTask)
	})
	r.Post("/queries", s.MultipleQueries)
	r.Post("/tasks/wait", s.WaitTasks)

	r.Get("/cache", s.GetCache)
	r.Put("/cache", s.PutCache)
	r.Delete("/cache", s.ClearCache)
}

// Search handles POST /indexes/{index}/search. The body is the query parameters.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var q indexflow.Query
	if !decodeBody(w, r, &q) {
		return
	}
	res, err := s.wf.Search(r.Context(), chi.URLParam(r, "index"), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DisjunctiveSearch handles POST /indexes/{index}/disjunctive-search.
func (s *Server) DisjunctiveSearch(w http.ResponseWriter, r *http.Request) {
	var req DisjunctiveSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.wf.SearchDisjunctiveFaceting(
		r.Context(), chi.URLParam(r, "index"), req.Query, req.DisjunctiveFacets, req.Refinements,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteByQuery handles POST /indexes/{index}/delete-by-query.
func (s *Server) DeleteByQuery(w http.ResponseWriter, r *http.Request) {
	var req DeleteByQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.wf.DeleteByQuery(r.Context(), chi.URLParam(r, "index"), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// WaitTask handles GET /indexes/{index}/tasks/{taskID}/wait.
func (s *Server) WaitTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "taskID must be an integer")
		return
	}
	st, err := s.wf.WaitTask(r.Context(), chi.URLParam(r, "index"), taskID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// MultipleQueries handles POST /queries.
func (s *Server) MultipleQueries(w http.ResponseWriter, r *http.Request) {
	var req MultipleQueriesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.wf.MultipleQueries(r.Context(), req.Requests, req.Strategy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MultipleQueriesResponse{Results: res})
}

// WaitTasks handles POST /tasks/wait.
func (s *Server) WaitTasks(w http.ResponseWriter, r *http.Request) {
	var req WaitTasksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Tasks) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "tasks must not be empty")
		return
	}
	res, err := s.wf.WaitTasks(r.Context(), req.Tasks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WaitTasksResponse{Tasks: res})
}

// GetCache handles GET /cache.
func (s *Server) GetCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CacheStatus{Enabled: s.wf.SearchCacheEnabled()})
}

// PutCache handles PUT /cache.
func (s *Server) PutCache(w http.ResponseWriter, r *http.Request) {
	var req CacheRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TTLSec < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "ttl_sec must not be negative")
		return
	}
	if req.Enabled {
		s.wf.EnableSearchCache(time.Duration(req.TTLSec) * time.Second)
	} else {
		s.wf.DisableSearchCache()
	}
	writeJSON(w, http.StatusOK, CacheStatus{Enabled: s.wf.SearchCacheEnabled()})
}

// ClearCache handles DELETE /cache.
func (s *Server) ClearCache(w http.ResponseWriter, _ *http.Request) {
	s.wf.ClearSearchCache()
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health. Only a fully unreachable pool reports 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.wf.Health(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == indexflow.HealthError {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: s.build.Version,
		Build:   s.build,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// indexLogger tags the request logger with the index so workflow logs carry it.
func indexLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logpkg.WithFields(r.Context(), zap.String("index", chi.URLParam(r, "index")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// cancelledHandler covers both an operation cancelled through its handle and
// a request whose context ended.
func cancelledHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, indexflow.ErrCancelled) && !errors.Is(err, context.Canceled) {
		return false
	}
	writeError(w, StatusClientClosedRequest, CodeCancelled, "request cancelled")
	return true
}

// upstreamStatusHandler passes 4xx answers of the index service through.
func upstreamStatusHandler(w http.ResponseWriter, err error) bool {
	var se *indexflow.StatusError
	if !errors.As(err, &se) || se.StatusCode < 400 || se.StatusCode >= 500 {
		return false
	}
	msg := se.Message
	if msg == "" {
		msg = http.StatusText(se.StatusCode)
	}
	writeError(w, se.StatusCode, CodeUpstreamError, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("workflow error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
