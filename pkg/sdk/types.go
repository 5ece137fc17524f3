package indexflow

import (
	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/usecase/deletebyquery"
	"github.com/kailas-cloud/indexflow/internal/usecase/health"
	"github.com/kailas-cloud/indexflow/internal/usecase/multiquery"
	"github.com/kailas-cloud/indexflow/internal/usecase/task"
)

// Operation is a cancellable unit of work with one completion.
type Operation[T any] = operation.Operation[T]

// OperationState is the lifecycle state of an Operation.
type OperationState = operation.State

// Operation states.
const (
	StatePending   = operation.Pending
	StateExecuting = operation.Executing
	StateCancelled = operation.Cancelled
	StateFinished  = operation.Finished
)

// Query is a set of named search parameters.
type Query = domain.Query

// NewQuery creates a query for the given full-text search string.
func NewQuery(text string) Query { return domain.NewQuery(text) }

// Refinements maps a facet name to its selected values.
type Refinements = domain.Refinements

// FacetFilter is one conjunct of a facetFilters expression.
type FacetFilter = domain.FacetFilter

// Hit is a single record of a search result.
type Hit = domain.Hit

// FacetCounts maps a facet value to its record count.
type FacetCounts = domain.FacetCounts

// SearchResult is a decoded search response.
type SearchResult = domain.SearchResult

// AggregatedResult is a disjunctive faceting result.
type AggregatedResult = domain.AggregatedResult

// TaskStatus is the state of a server-side task.
type TaskStatus = domain.TaskStatus

// DeleteByQueryResult reports how many records a delete-by-query removed.
type DeleteByQueryResult = deletebyquery.Result

// IndexedQuery is one query of a MultipleQueries batch.
type IndexedQuery = multiquery.IndexedQuery

// Strategy controls how a batch is run by the service.
type Strategy = multiquery.Strategy

// Batch strategies.
const (
	StrategyNone                = multiquery.StrategyNone
	StrategyStopIfEnoughMatches = multiquery.StrategyStopIfEnoughMatches
)

// Backoff is the task polling schedule: Base*n² capped at Max.
type Backoff = task.Backoff

// HealthReport is the outcome of Client.Health, keyed by host.
type HealthReport = health.Report

// Health statuses.
const (
	HealthOK       = health.Healthy
	HealthDegraded = health.Degraded
	HealthError    = health.Unhealthy
)
