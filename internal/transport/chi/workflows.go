package chi

import (
	"context"
	"time"

	indexflow "github.com/kailas-cloud/indexflow/pkg/sdk"
)

// ClientWorkflows runs Workflows synchronously on an SDK client.
type ClientWorkflows struct {
	c *indexflow.Client
}

var _ Workflows = (*ClientWorkflows)(nil)

// NewClientWorkflows wraps c.
func NewClientWorkflows(c *indexflow.Client) *ClientWorkflows {
	return &ClientWorkflows{c: c}
}

func (a *ClientWorkflows) Search(ctx context.Context, index string, q indexflow.Query) (indexflow.SearchResult, error) {
	return a.c.Index(index).SearchSync(ctx, q)
}

func (a *ClientWorkflows) SearchDisjunctiveFaceting(
	ctx context.Context, index string, q indexflow.Query, facets []string, refinements indexflow.Refinements,
) (indexflow.AggregatedResult, error) {
	return a.c.Index(index).SearchDisjunctiveFacetingSync(ctx, q, facets, refinements)
}

func (a *ClientWorkflows) DeleteByQuery(
	ctx context.Context, index string, q indexflow.Query,
) (indexflow.DeleteByQueryResult, error) {
	return a.c.Index(index).DeleteByQuerySync(ctx, q)
}

func (a *ClientWorkflows) WaitTask(ctx context.Context, index string, taskID int64) (indexflow.TaskStatus, error) {
	return a.c.Index(index).WaitTaskSync(ctx, taskID)
}

func (a *ClientWorkflows) MultipleQueries(
	ctx context.Context, queries []indexflow.IndexedQuery, strategy indexflow.Strategy,
) ([]indexflow.SearchResult, error) {
	return a.c.MultipleQueriesSync(ctx, queries, strategy)
}

func (a *ClientWorkflows) WaitTasks(
	ctx context.Context, tasks map[string]int64,
) (map[string]indexflow.TaskStatus, error) {
	return a.c.WaitTasksSync(ctx, tasks)
}

func (a *ClientWorkflows) EnableSearchCache(ttl time.Duration) { a.c.EnableSearchCache(ttl) }

func (a *ClientWorkflows) DisableSearchCache() { a.c.DisableSearchCache() }

func (a *ClientWorkflows) ClearSearchCache() { a.c.ClearSearchCache() }

func (a *ClientWorkflows) SearchCacheEnabled() bool { return a.c.SearchCacheEnabled() }

func (a *ClientWorkflows) Health(ctx context.Context) indexflow.HealthReport { return a.c.Health(ctx) }
