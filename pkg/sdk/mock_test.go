package indexflow

import (
	"context"
	"time"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/usecase/deletebyquery"
	"github.com/kailas-cloud/indexflow/internal/usecase/health"
	"github.com/kailas-cloud/indexflow/internal/usecase/multiquery"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(index string, q domain.Query) (domain.SearchResult, error)
	enabled  bool
	ttl      time.Duration
	clears   int
}

func (m *mockSearchUC) Search(index string, q domain.Query) *operation.Operation[domain.SearchResult] {
	return operation.New("search", func(context.Context, *operation.Token) (domain.SearchResult, error) {
		return m.searchFn(index, q)
	})
}

func (m *mockSearchUC) EnableCache(ttl time.Duration) { m.enabled, m.ttl = true, ttl }
func (m *mockSearchUC) DisableCache()                 { m.enabled = false }
func (m *mockSearchUC) ClearCache()                   { m.clears++ }
func (m *mockSearchUC) CacheEnabled() bool            { return m.enabled }

// --- multiQueryUseCase mock ---

type mockMultiUC struct {
	multipleFn    func(queries []multiquery.IndexedQuery, strategy multiquery.Strategy) ([]domain.SearchResult, error)
	disjunctiveFn func(index string, q domain.Query, facets []string, refinements domain.Refinements) (domain.AggregatedResult, error)
}

func (m *mockMultiUC) MultipleQueries(
	queries []multiquery.IndexedQuery, strategy multiquery.Strategy,
) *operation.Operation[[]domain.SearchResult] {
	return operation.New("multiple_queries", func(context.Context, *operation.Token) ([]domain.SearchResult, error) {
		return m.multipleFn(queries, strategy)
	})
}

func (m *mockMultiUC) SearchDisjunctiveFaceting(
	index string, q domain.Query, facets []string, refinements domain.Refinements,
) *operation.Operation[domain.AggregatedResult] {
	return operation.New("search_disjunctive_faceting", func(context.Context, *operation.Token) (domain.AggregatedResult, error) {
		return m.disjunctiveFn(index, q, facets, refinements)
	})
}

// --- deleteUseCase mock ---

type mockDeleteUC struct {
	deleteFn func(index string, q domain.Query) (deletebyquery.Result, error)
}

func (m *mockDeleteUC) DeleteByQuery(index string, q domain.Query) *operation.Operation[deletebyquery.Result] {
	return operation.New("delete_by_query", func(context.Context, *operation.Token) (deletebyquery.Result, error) {
		return m.deleteFn(index, q)
	})
}

// --- taskUseCase mock ---

type mockTaskUC struct {
	waitFn func(ctx context.Context, tok *operation.Token, index string, taskID int64) (domain.TaskStatus, error)
}

func (m *mockTaskUC) WaitTask(index string, taskID int64) *operation.Operation[domain.TaskStatus] {
	return operation.New("wait_task", func(ctx context.Context, tok *operation.Token) (domain.TaskStatus, error) {
		return m.waitFn(ctx, tok, index, taskID)
	})
}

func (m *mockTaskUC) Wait(
	ctx context.Context, tok *operation.Token, index string, taskID int64,
) (domain.TaskStatus, error) {
	return m.waitFn(ctx, tok, index, taskID)
}

// --- helpers ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) health.Report
}

func (m *mockHealthUC) Check(ctx context.Context) health.Report { return m.checkFn(ctx) }

func testClient(
	searchSvc searchUseCase,
	multiSvc multiQueryUseCase,
	deleteSvc deleteUseCase,
	taskSvc taskUseCase,
) *Client {
	return &Client{
		searchSvc: searchSvc,
		multiSvc:  multiSvc,
		deleteSvc: deleteSvc,
		taskSvc:   taskSvc,
	}
}
