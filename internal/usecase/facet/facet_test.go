package facet

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/indexflow/internal/domain"
)

func TestBuildFacetFilters_Global(t *testing.T) {
	refinements := domain.Refinements{
		"color": {"red", "blue"},
		"brand": {"acme"},
	}
	got := BuildFacetFilters([]string{"color"}, refinements, "")

	want := []domain.FacetFilter{
		{Term: "brand:acme"},
		{AnyOf: []string{"color:red", "color:blue"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filters = %+v, want %+v", got, want)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["brand:acme",["color:red","color:blue"]]` {
		t.Errorf("json = %s", data)
	}
}

func TestBuildFacetFilters_ExcludedFacet(t *testing.T) {
	refinements := domain.Refinements{
		"color": {"red", "blue"},
		"brand": {"acme"},
	}
	got := BuildFacetFilters([]string{"color"}, refinements, "color")
	want := []domain.FacetFilter{{Term: "brand:acme"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filters = %+v, want %+v", got, want)
	}
}

func TestBuildFacetFilters_ConjunctiveMultiValue(t *testing.T) {
	got := BuildFacetFilters(nil, domain.Refinements{"tag": {"a", "b"}}, "")
	want := []domain.FacetFilter{{Term: "tag:a"}, {Term: "tag:b"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filters = %+v, want %+v", got, want)
	}
}

func TestBuildFacetFilters_Empty(t *testing.T) {
	got := BuildFacetFilters([]string{"color"}, nil, "")
	if len(got) != 0 {
		t.Fatalf("filters = %+v, want none", got)
	}
}

func raws(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

func TestAggregateResults_ReinstatesZeroCounts(t *testing.T) {
	res, err := AggregateResults(
		[]string{"color"},
		domain.Refinements{"color": {"red", "blue"}},
		raws(
			`{"hits":[{"objectID":"1"}],"nbHits":1,"page":0,"nbPages":1,"facets":{"brand":{"acme":1}}}`,
			`{"hits":[],"facets":{"color":{"red":3}}}`,
		),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.FacetCounts{"red": 3, "blue": 0}
	if !reflect.DeepEqual(res.DisjunctiveFacets["color"], want) {
		t.Errorf("disjunctive color = %v, want %v", res.DisjunctiveFacets["color"], want)
	}
	if !reflect.DeepEqual(res.Facets["color"], want) {
		t.Errorf("merged color = %v, want %v", res.Facets["color"], want)
	}
	if res.Facets["brand"]["acme"] != 1 {
		t.Errorf("base facets lost: %v", res.Facets)
	}
	if len(res.Hits) != 1 || res.NbHits != 1 {
		t.Errorf("base hits not authoritative: %+v", res.SearchResult)
	}
	if !res.FacetsExhaustive() {
		t.Error("expected exhaustive result")
	}
}

func TestAggregateResults_ExhaustivenessDegrades(t *testing.T) {
	res, err := AggregateResults(
		[]string{"color", "size"},
		nil,
		raws(
			`{"hits":[],"exhaustiveFacetsCount":true}`,
			`{"hits":[],"facets":{"color":{"red":1}},"exhaustiveFacetsCount":true}`,
			`{"hits":[],"facets":{"size":{"m":2}},"exhaustiveFacetsCount":false}`,
		),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FacetsExhaustive() {
		t.Error("expected non-exhaustive aggregate")
	}
}

func TestAggregateResults_NeverImprovesExhaustiveness(t *testing.T) {
	res, err := AggregateResults(
		[]string{"color"},
		nil,
		raws(
			`{"hits":[],"exhaustiveFacetsCount":false}`,
			`{"hits":[],"facets":{"color":{}},"exhaustiveFacetsCount":true}`,
		),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FacetsExhaustive() {
		t.Error("exhaustiveness must not improve from merging")
	}
}

func TestAggregateResults_MissingOwnFacetKey(t *testing.T) {
	res, err := AggregateResults(
		[]string{"color"},
		domain.Refinements{"color": {"red"}},
		raws(`{"hits":[]}`, `{"hits":[],"facets":{}}`),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.DisjunctiveFacets["color"], domain.FacetCounts{"red": 0}) {
		t.Errorf("color = %v", res.DisjunctiveFacets["color"])
	}
}

func TestAggregateResults_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		facets []string
		raw    []json.RawMessage
	}{
		{name: "empty", facets: nil, raw: nil},
		{name: "count mismatch", facets: []string{"color", "size"}, raw: raws(`{"hits":[]}`, `{"hits":[],"facets":{"color":{}}}`)},
		{name: "malformed base", facets: nil, raw: raws(`not json`)},
		{name: "base without hits", facets: nil, raw: raws(`{"nbHits":0}`)},
		{name: "secondary without facets", facets: []string{"color"}, raw: raws(`{"hits":[]}`, `{"hits":[]}`)},
		{name: "reordered", facets: []string{"color"}, raw: raws(`{"hits":[]}`, `{"hits":[],"facets":{"size":{"m":1}}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AggregateResults(tt.facets, nil, tt.raw)
			if !errors.Is(err, domain.ErrInvalidResponse) {
				t.Fatalf("err = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestAggregateResults_DoesNotAliasInput(t *testing.T) {
	refinements := domain.Refinements{"color": {"red", "blue"}}
	input := raws(`{"hits":[]}`, `{"hits":[],"facets":{"color":{"red":3}}}`)

	first, err := AggregateResults([]string{"color"}, refinements, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Facets["color"]["red"] = 100

	second, err := AggregateResults([]string{"color"}, refinements, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Facets["color"]["red"] != 3 {
		t.Errorf("red = %d, want 3", second.Facets["color"]["red"])
	}
}

func TestAggregateResults_FacetsAndDisjunctiveFacetsIndependent(t *testing.T) {
	res, err := AggregateResults(
		[]string{"color"},
		domain.Refinements{"color": {"red", "blue"}},
		raws(`{"hits":[]}`, `{"hits":[],"facets":{"color":{"red":3}}}`),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res.Facets["color"]["green"] = 9
	if _, ok := res.DisjunctiveFacets["color"]["green"]; ok {
		t.Errorf("disjunctive color changed with merged facets: %v", res.DisjunctiveFacets["color"])
	}
	want := domain.FacetCounts{"red": 3, "blue": 0}
	if !reflect.DeepEqual(res.DisjunctiveFacets["color"], want) {
		t.Errorf("disjunctive color = %v, want %v", res.DisjunctiveFacets["color"], want)
	}
}
