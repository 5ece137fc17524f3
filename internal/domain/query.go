package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Well-known query parameter names.
const (
	ParamQuery                 = "query"
	ParamFacets                = "facets"
	ParamFacetFilters          = "facetFilters"
	ParamHitsPerPage           = "hitsPerPage"
	ParamPage                  = "page"
	ParamAttributesToRetrieve  = "attributesToRetrieve"
	ParamAttributesToHighlight = "attributesToHighlight"
	ParamAttributesToSnippet   = "attributesToSnippet"
	ParamAnalytics             = "analytics"
	ParamCursor                = "cursor"
)

// ObjectIDAttribute is the identifier attribute of every record.
const ObjectIDAttribute = "objectID"

// Query is a set of named search parameters.
// Treat a Query as immutable once handed to a request; use Clone to derive variants.
type Query map[string]any

// NewQuery creates a query for the given full-text search string.
func NewQuery(text string) Query {
	return Query{ParamQuery: text}
}

// Clone returns a copy that can be mutated without affecting q.
// String slices are copied; other values are shared.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, v := range q {
		switch vv := v.(type) {
		case []string:
			out[k] = slices.Clone(vv)
		case []any:
			out[k] = slices.Clone(vv)
		case []FacetFilter:
			out[k] = slices.Clone(vv)
		default:
			out[k] = v
		}
	}
	return out
}

// Set assigns a parameter and returns q for chaining.
func (q Query) Set(name string, value any) Query {
	q[name] = value
	return q
}

// Strings returns a string-list parameter, accepting []string or []any of strings.
func (q Query) Strings(name string) []string {
	switch v := q[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// CanonicalJSON encodes q with map keys sorted, so equal queries encode identically.
func (q Query) CanonicalJSON() ([]byte, error) {
	// encoding/json sorts map keys; copying into a plain map keeps the type switch out of it.
	data, err := json.Marshal(map[string]any(q))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return data, nil
}

// Refinements maps a facet name to the values selected for it, in selection order.
type Refinements map[string][]string

// FacetNames returns the refined facet names in sorted order.
func (r Refinements) FacetNames() []string {
	return slices.Sorted(maps.Keys(r))
}

// FacetFilter is one conjunct of a facetFilters expression: either a single
// term or a disjunction of terms.
type FacetFilter struct {
	Term  string
	AnyOf []string
}

// Term creates a standalone facet filter term.
func Term(facet, value string) FacetFilter {
	return FacetFilter{Term: facet + ":" + value}
}

// IsGroup reports whether f is an OR-group.
func (f FacetFilter) IsGroup() bool { return f.AnyOf != nil }

// MarshalJSON encodes a term as a string and an OR-group as a string array.
func (f FacetFilter) MarshalJSON() ([]byte, error) {
	if f.IsGroup() {
		return json.Marshal(f.AnyOf)
	}
	return json.Marshal(f.Term)
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (f *FacetFilter) UnmarshalJSON(data []byte) error {
	var term string
	if err := json.Unmarshal(data, &term); err == nil {
		*f = FacetFilter{Term: term}
		return nil
	}
	var group []string
	if err := json.Unmarshal(data, &group); err != nil {
		return fmt.Errorf("facet filter must be a string or a string array: %w", err)
	}
	if group == nil {
		group = []string{}
	}
	*f = FacetFilter{AnyOf: group}
	return nil
}
