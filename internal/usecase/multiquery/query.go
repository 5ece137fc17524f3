package multiquery

import (
	"errors"
	"slices"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/usecase/facet"
)

// Strategy controls how the service runs the queries of a batch.
type Strategy string

// Batch strategies.
const (
	// StrategyNone runs every query.
	StrategyNone Strategy = "none"
	// StrategyStopIfEnoughMatches stops once a query has hitsPerPage matches.
	StrategyStopIfEnoughMatches Strategy = "stopIfEnoughMatches"
)

// ErrEmptyBatch is returned for a batch with no queries.
var ErrEmptyBatch = errors.New("no queries in batch")

// ErrUnknownStrategy is returned for a strategy the service does not accept.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyNone || s == StrategyStopIfEnoughMatches
}

// IndexedQuery is one query of a batch.
type IndexedQuery struct {
	IndexName string       `json:"indexName"`
	Params    domain.Query `json:"params"`
}

type batchBody struct {
	Requests []IndexedQuery `json:"requests"`
	Strategy Strategy       `json:"strategy"`
}

// DisjunctiveQueries builds the batch for a disjunctive faceting search: the
// global query first, then one counts-only query per disjunctive facet.
//
// The global query requests the caller's facets plus every disjunctive facet
// and is filtered by all refinements. Each facet query asks for zero hits,
// retrieves no attributes, skips analytics and drops its own facet's
// refinements from the filters.
// Refinements replace any facetFilters already set on q.
func DisjunctiveQueries(
	index string, q domain.Query, disjunctiveFacets []string, refinements domain.Refinements,
) []IndexedQuery {
	global := q.Clone()
	facets := slices.Clone(q.Strings(domain.ParamFacets))
	for _, f := range disjunctiveFacets {
		if !slices.Contains(facets, f) {
			facets = append(facets, f)
		}
	}
	global.Set(domain.ParamFacets, facets)
	global.Set(domain.ParamFacetFilters, facet.BuildFacetFilters(disjunctiveFacets, refinements, ""))

	out := make([]IndexedQuery, 0, len(disjunctiveFacets)+1)
	out = append(out, IndexedQuery{IndexName: index, Params: global})
	for _, f := range disjunctiveFacets {
		fq := q.Clone().
			Set(domain.ParamHitsPerPage, 0).
			Set(domain.ParamPage, 0).
			Set(domain.ParamAttributesToRetrieve, []string{}).
			Set(domain.ParamAttributesToHighlight, []string{}).
			Set(domain.ParamAttributesToSnippet, []string{}).
			Set(domain.ParamAnalytics, false).
			Set(domain.ParamFacets, []string{f}).
			Set(domain.ParamFacetFilters, facet.BuildFacetFilters(disjunctiveFacets, refinements, f))
		out = append(out, IndexedQuery{IndexName: index, Params: fq})
	}
	return out
}
