// Package facet builds disjunctive facet filters and merges the per-facet
// counts of a disjunctive search into one result.
package facet

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/indexflow/internal/domain"
)

const opAggregate = "aggregate_results"

// BuildFacetFilters returns the facetFilters conjunction for the refinements.
// Refined disjunctive facets become one OR-group each; conjunctive facets
// become one term per value. The excluded facet is omitted, which is how each
// disjunctive facet's own query keeps counts for its unselected values.
// Facets are emitted in sorted name order.
func BuildFacetFilters(disjunctiveFacets []string, refinements domain.Refinements, excluded string) []domain.FacetFilter {
	filters := make([]domain.FacetFilter, 0, len(refinements))
	for _, name := range refinements.FacetNames() {
		values := refinements[name]
		if !slices.Contains(disjunctiveFacets, name) {
			for _, v := range values {
				filters = append(filters, domain.Term(name, v))
			}
			continue
		}
		if name == excluded || len(values) == 0 {
			continue
		}
		group := make([]string, 0, len(values))
		for _, v := range values {
			group = append(group, domain.Term(name, v).Term)
		}
		filters = append(filters, domain.FacetFilter{AnyOf: group})
	}
	return filters
}

// AggregateResults merges a disjunctive search. raw[0] is the global query
// result and is authoritative for hits and pagination; raw[i+1] must be the
// result of the query for disjunctiveFacets[i].
func AggregateResults(
	disjunctiveFacets []string, refinements domain.Refinements, raw []json.RawMessage,
) (domain.AggregatedResult, error) {
	if len(raw) == 0 {
		return domain.AggregatedResult{}, domain.NewInvalidResponse(opAggregate, "results",
			fmt.Errorf("empty result list"))
	}
	if len(raw) != len(disjunctiveFacets)+1 {
		return domain.AggregatedResult{}, domain.NewInvalidResponse(opAggregate, "results",
			fmt.Errorf("got %d results for %d disjunctive facets", len(raw), len(disjunctiveFacets)))
	}

	base, err := domain.DecodeSearchResult(opAggregate, raw[0])
	if err != nil {
		return domain.AggregatedResult{}, err
	}
	out := domain.AggregatedResult{
		SearchResult:      base,
		DisjunctiveFacets: make(map[string]domain.FacetCounts, len(disjunctiveFacets)),
	}
	if out.Facets == nil {
		out.Facets = make(map[string]domain.FacetCounts, len(disjunctiveFacets))
	}

	exhaustive := base.FacetsExhaustive()
	for i, name := range disjunctiveFacets {
		counts, sub, err := facetCounts(name, raw[i+1])
		if err != nil {
			return domain.AggregatedResult{}, fmt.Errorf("disjunctive facet %q: %w", name, err)
		}
		for _, v := range refinements[name] {
			if _, ok := counts[v]; !ok {
				counts[v] = 0
			}
		}
		out.Facets[name] = counts
		out.DisjunctiveFacets[name] = maps.Clone(counts)
		if !sub.FacetsExhaustive() {
			exhaustive = false
		}
	}

	if !exhaustive {
		f := false
		out.ExhaustiveFacetsCount = &f
	}
	return out, nil
}

// facetCounts extracts the counts of one facet from its secondary result.
// The returned map is a copy owned by the caller.
func facetCounts(name string, raw json.RawMessage) (domain.FacetCounts, domain.SearchResult, error) {
	var resp struct {
		Facets map[string]domain.FacetCounts `json:"facets"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, domain.SearchResult{}, domain.NewInvalidResponse(opAggregate, "", err)
	}
	if resp.Facets == nil {
		return nil, domain.SearchResult{}, domain.NewInvalidResponse(opAggregate, domain.ParamFacets, nil)
	}
	sub, err := domain.DecodeSearchResult(opAggregate, raw)
	if err != nil {
		return nil, domain.SearchResult{}, err
	}

	counts, ok := resp.Facets[name]
	if !ok && len(resp.Facets) > 0 {
		// Counts for some other facet: the results are not in request order.
		return nil, domain.SearchResult{}, domain.NewInvalidResponse(opAggregate, domain.ParamFacets,
			fmt.Errorf("expected counts for %q, got %v", name, slices.Sorted(maps.Keys(resp.Facets))))
	}
	out := make(domain.FacetCounts, len(counts))
	maps.Copy(out, counts)
	return out, sub, nil
}
