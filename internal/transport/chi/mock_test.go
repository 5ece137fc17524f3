package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	indexflow "github.com/kailas-cloud/indexflow/pkg/sdk"
)

type mockWorkflows struct {
	searchFn      func(ctx context.Context, index string, q indexflow.Query) (indexflow.SearchResult, error)
	disjunctiveFn func(index string, q indexflow.Query, facets []string, ref indexflow.Refinements) (indexflow.AggregatedResult, error)
	deleteFn      func(ctx context.Context, index string, q indexflow.Query) (indexflow.DeleteByQueryResult, error)
	waitTaskFn    func(index string, taskID int64) (indexflow.TaskStatus, error)
	multiFn       func(queries []indexflow.IndexedQuery, strategy indexflow.Strategy) ([]indexflow.SearchResult, error)
	waitTasksFn   func(tasks map[string]int64) (map[string]indexflow.TaskStatus, error)
	cacheEnabled  bool
	cacheTTL      time.Duration
	cacheCleared  int
	health        indexflow.HealthReport
}

func (m *mockWorkflows) Search(ctx context.Context, index string, q indexflow.Query) (indexflow.SearchResult, error) {
	return m.searchFn(ctx, index, q)
}

func (m *mockWorkflows) SearchDisjunctiveFaceting(
	_ context.Context, index string, q indexflow.Query, facets []string, ref indexflow.Refinements,
) (indexflow.AggregatedResult, error) {
	return m.disjunctiveFn(index, q, facets, ref)
}

func (m *mockWorkflows) DeleteByQuery(
	ctx context.Context, index string, q indexflow.Query,
) (indexflow.DeleteByQueryResult, error) {
	return m.deleteFn(ctx, index, q)
}

func (m *mockWorkflows) WaitTask(_ context.Context, index string, taskID int64) (indexflow.TaskStatus, error) {
	return m.waitTaskFn(index, taskID)
}

func (m *mockWorkflows) MultipleQueries(
	_ context.Context, queries []indexflow.IndexedQuery, strategy indexflow.Strategy,
) ([]indexflow.SearchResult, error) {
	return m.multiFn(queries, strategy)
}

func (m *mockWorkflows) WaitTasks(_ context.Context, tasks map[string]int64) (map[string]indexflow.TaskStatus, error) {
	return m.waitTasksFn(tasks)
}

func (m *mockWorkflows) EnableSearchCache(ttl time.Duration) {
	m.cacheEnabled = true
	m.cacheTTL = ttl
}

func (m *mockWorkflows) DisableSearchCache() { m.cacheEnabled = false }

func (m *mockWorkflows) ClearSearchCache() { m.cacheCleared++ }

func (m *mockWorkflows) SearchCacheEnabled() bool { return m.cacheEnabled }

func (m *mockWorkflows) Health(context.Context) indexflow.HealthReport { return m.health }

func newTestRouter(wf Workflows) http.Handler {
	r := chi.NewRouter()
	NewServer(wf, zap.NewNop()).Routes(r)
	return r
}
