package indexflow

import "context"

// Index runs workflows against one index.
type Index struct {
	name string
	c    *Client
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// Search queries the index, through the search cache when enabled.
func (i *Index) Search(q Query) *Operation[SearchResult] {
	return track(i.c.obs, i.c.searchSvc.Search(i.name, q))
}

// SearchSync runs Search and waits for it.
func (i *Index) SearchSync(ctx context.Context, q Query) (SearchResult, error) {
	return i.Search(q).Run(ctx)
}

// SearchDisjunctiveFaceting searches with OR semantics between the refined
// values of each disjunctive facet and AND semantics across facets. The
// result carries, for every disjunctive facet, the counts it would have
// without its own refinement.
func (i *Index) SearchDisjunctiveFaceting(
	q Query, disjunctiveFacets []string, refinements Refinements,
) *Operation[AggregatedResult] {
	return track(i.c.obs, i.c.multiSvc.SearchDisjunctiveFaceting(i.name, q, disjunctiveFacets, refinements))
}

// SearchDisjunctiveFacetingSync runs SearchDisjunctiveFaceting and waits for it.
func (i *Index) SearchDisjunctiveFacetingSync(
	ctx context.Context, q Query, disjunctiveFacets []string, refinements Refinements,
) (AggregatedResult, error) {
	return i.SearchDisjunctiveFaceting(q, disjunctiveFacets, refinements).Run(ctx)
}

// WaitTask polls the task until it is published.
func (i *Index) WaitTask(taskID int64) *Operation[TaskStatus] {
	return track(i.c.obs, i.c.taskSvc.WaitTask(i.name, taskID))
}

// WaitTaskSync runs WaitTask and waits for it.
func (i *Index) WaitTaskSync(ctx context.Context, taskID int64) (TaskStatus, error) {
	return i.WaitTask(taskID).Run(ctx)
}

// DeleteByQuery deletes every record matching q, waiting for each deletion
// batch to be published before looking for more.
func (i *Index) DeleteByQuery(q Query) *Operation[DeleteByQueryResult] {
	return track(i.c.obs, i.c.deleteSvc.DeleteByQuery(i.name, q))
}

// DeleteByQuerySync runs DeleteByQuery and waits for it.
func (i *Index) DeleteByQuerySync(ctx context.Context, q Query) (DeleteByQueryResult, error) {
	return i.DeleteByQuery(q).Run(ctx)
}
