package chi

import (
	"github.com/kailas-cloud/indexflow/internal/version"
	indexflow "github.com/kailas-cloud/indexflow/pkg/sdk"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DisjunctiveSearchRequest is the body of POST /indexes/{index}/disjunctive-search.
type DisjunctiveSearchRequest struct {
	Query             indexflow.Query       `json:"query"`
	DisjunctiveFacets []string              `json:"disjunctiveFacets"`
	Refinements       indexflow.Refinements `json:"refinements"`
}

// DeleteByQueryRequest is the body of POST /indexes/{index}/delete-by-query.
type DeleteByQueryRequest struct {
	Query indexflow.Query `json:"query"`
}

// MultipleQueriesRequest is the body of POST /queries.
type MultipleQueriesRequest struct {
	Requests []indexflow.IndexedQuery `json:"requests"`
	Strategy indexflow.Strategy       `json:"strategy"`
}

// MultipleQueriesResponse holds one result per request, in order.
type MultipleQueriesResponse struct {
	Results []indexflow.SearchResult `json:"results"`
}

// WaitTasksRequest maps index names to task IDs.
type WaitTasksRequest struct {
	Tasks map[string]int64 `json:"tasks"`
}

// WaitTasksResponse maps index names to final task statuses.
type WaitTasksResponse struct {
	Tasks map[string]indexflow.TaskStatus `json:"tasks"`
}

// CacheRequest is the body of PUT /cache. A zero TTL uses the default.
type CacheRequest struct {
	Enabled bool `json:"enabled"`
	TTLSec  int  `json:"ttl_sec"`
}

// CacheStatus reports whether the search cache is on.
type CacheStatus struct {
	Enabled bool `json:"enabled"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
	Build   version.Info      `json:"build"`
}
