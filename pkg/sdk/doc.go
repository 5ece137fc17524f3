// Package indexflow is a Go client for a hosted search index service. It
// layers workflows on top of plain index queries:
//   - waiting for asynchronous tasks to be published
//   - deleting every record matching a query
//   - batched multi-index queries
//   - disjunctive faceting (OR inside a facet, AND across facets)
//   - an in-memory search response cache
//
// Every call returns an *Operation. Register a completion with OnComplete,
// then Start it; or use the Sync variants, which start and wait.
//
//	client, _ := indexflow.New(
//	    indexflow.WithHosts("my-app-dsn.example.net"),
//	    indexflow.WithHeader("X-Api-Key", key),
//	    indexflow.WithSearchCache(2*time.Minute),
//	)
//	products := client.Index("products")
//
//	res, _ := products.SearchDisjunctiveFacetingSync(ctx,
//	    indexflow.NewQuery("shoe"),
//	    []string{"color"},
//	    indexflow.Refinements{"color": {"red", "blue"}, "brand": {"acme"}},
//	)
//
//	op := products.DeleteByQuery(indexflow.NewQuery("").
//	    Set("facetFilters", []string{"discontinued:true"}))
//	op.OnComplete(func(r indexflow.DeleteByQueryResult, err error) { ... })
//	op.Start(ctx)
//	// op.Cancel() stops the workflow; the completion is then never called.
package indexflow
