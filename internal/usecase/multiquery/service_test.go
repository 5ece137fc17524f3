package multiquery

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

func TestDisjunctiveQueries(t *testing.T) {
	q := domain.NewQuery("shoe").
		Set(domain.ParamFacets, []string{"brand"}).
		Set(domain.ParamHitsPerPage, 20)
	refinements := domain.Refinements{"color": {"red", "blue"}, "brand": {"acme"}}

	queries := DisjunctiveQueries("products", q, []string{"color"}, refinements)
	if len(queries) != 2 {
		t.Fatalf("queries = %d, want 2", len(queries))
	}

	global := queries[0]
	if global.IndexName != "products" {
		t.Errorf("index = %q", global.IndexName)
	}
	if got := global.Params.Strings(domain.ParamFacets); !reflect.DeepEqual(got, []string{"brand", "color"}) {
		t.Errorf("global facets = %v", got)
	}
	wantGlobal := []domain.FacetFilter{
		{Term: "brand:acme"},
		{AnyOf: []string{"color:red", "color:blue"}},
	}
	if !reflect.DeepEqual(global.Params[domain.ParamFacetFilters], wantGlobal) {
		t.Errorf("global filters = %+v", global.Params[domain.ParamFacetFilters])
	}
	if global.Params[domain.ParamHitsPerPage] != 20 {
		t.Errorf("global hitsPerPage = %v", global.Params[domain.ParamHitsPerPage])
	}

	fq := queries[1].Params
	if fq[domain.ParamHitsPerPage] != 0 || fq[domain.ParamPage] != 0 {
		t.Errorf("facet query pagination = %v/%v", fq[domain.ParamHitsPerPage], fq[domain.ParamPage])
	}
	if fq[domain.ParamAnalytics] != false {
		t.Errorf("analytics = %v", fq[domain.ParamAnalytics])
	}
	if got := fq.Strings(domain.ParamAttributesToRetrieve); got == nil || len(got) != 0 {
		t.Errorf("attributesToRetrieve = %v, want empty list", got)
	}
	if got := fq.Strings(domain.ParamFacets); !reflect.DeepEqual(got, []string{"color"}) {
		t.Errorf("facet query facets = %v", got)
	}
	if !reflect.DeepEqual(fq[domain.ParamFacetFilters], []domain.FacetFilter{{Term: "brand:acme"}}) {
		t.Errorf("facet query filters = %+v", fq[domain.ParamFacetFilters])
	}

	// Input query is untouched.
	if !reflect.DeepEqual(q.Strings(domain.ParamFacets), []string{"brand"}) {
		t.Errorf("caller query mutated: %v", q)
	}
	if _, ok := q[domain.ParamFacetFilters]; ok {
		t.Error("caller query gained facetFilters")
	}
}

func TestMultipleQueries_Success(t *testing.T) {
	m := &mockRequester{performFn: respond(`{"results":[
		{"hits":[{"objectID":"1"}],"nbHits":1,"index":"a"},
		{"hits":[],"nbHits":0,"index":"b"}
	]}`)}
	svc := newTestService(t, m)

	results, err := svc.MultipleQueries([]IndexedQuery{
		{IndexName: "a", Params: domain.NewQuery("x")},
		{IndexName: "b", Params: domain.NewQuery("y")},
	}, StrategyStopIfEnoughMatches).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Index != "a" || results[1].NbHits != 0 {
		t.Fatalf("results = %+v", results)
	}

	req := m.requests[0]
	if req.Path != transport.MultiQueryPath || req.Method != transport.MethodPost || !req.IsSearch {
		t.Errorf("request = %+v", req)
	}
	if !reflect.DeepEqual(req.Hosts, []string{"dsn-1", "dsn-2"}) {
		t.Errorf("hosts = %v, want read pool", req.Hosts)
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	want := `{"requests":[{"indexName":"a","params":{"query":"x"}},{"indexName":"b","params":{"query":"y"}}],"strategy":"stopIfEnoughMatches"}`
	if string(body) != want {
		t.Errorf("body = %s", body)
	}
}

func TestMultipleQueries_Errors(t *testing.T) {
	boom := errors.New("timeout")
	tests := []struct {
		name     string
		queries  []IndexedQuery
		strategy Strategy
		perform  func(context.Context, transport.Request) (json.RawMessage, error)
		check    func(error) bool
	}{
		{
			name:  "empty batch",
			check: func(err error) bool { return errors.Is(err, ErrEmptyBatch) },
		},
		{
			name:     "unknown strategy",
			queries:  []IndexedQuery{{IndexName: "a"}},
			strategy: "fastest",
			check:    func(err error) bool { return errors.Is(err, ErrUnknownStrategy) },
		},
		{
			name:    "transport",
			queries: []IndexedQuery{{IndexName: "a"}},
			perform: func(context.Context, transport.Request) (json.RawMessage, error) { return nil, boom },
			check: func(err error) bool {
				return errors.Is(err, domain.ErrTransport) && errors.Is(err, boom)
			},
		},
		{
			name:    "missing results",
			queries: []IndexedQuery{{IndexName: "a"}},
			perform: respond(`{}`),
			check:   func(err error) bool { return errors.Is(err, domain.ErrInvalidResponse) },
		},
		{
			name:    "dropped result",
			queries: []IndexedQuery{{IndexName: "a"}, {IndexName: "b"}},
			perform: respond(`{"results":[{"hits":[]}]}`),
			check:   func(err error) bool { return errors.Is(err, domain.ErrInvalidResponse) },
		},
		{
			name:    "result without hits",
			queries: []IndexedQuery{{IndexName: "a"}},
			perform: respond(`{"results":[{"nbHits":3}]}`),
			check:   func(err error) bool { return errors.Is(err, domain.ErrInvalidResponse) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockRequester{performFn: tt.perform})
			_, err := svc.MultipleQueries(tt.queries, tt.strategy).Run(context.Background())
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSearchDisjunctiveFaceting(t *testing.T) {
	m := &mockRequester{performFn: respond(`{"results":[
		{"hits":[{"objectID":"1"}],"nbHits":1,"facets":{"brand":{"acme":1}}},
		{"hits":[],"facets":{"color":{"red":3}}}
	]}`)}
	svc := newTestService(t, m)

	res, err := svc.SearchDisjunctiveFaceting(
		"products",
		domain.NewQuery("shoe"),
		[]string{"color"},
		domain.Refinements{"color": {"red", "blue"}},
	).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.DisjunctiveFacets["color"], domain.FacetCounts{"red": 3, "blue": 0}) {
		t.Errorf("color = %v", res.DisjunctiveFacets["color"])
	}
	if res.NbHits != 1 {
		t.Errorf("nbHits = %d", res.NbHits)
	}
	if m.calls() != 1 {
		t.Errorf("transport calls = %d, want one batch", m.calls())
	}
}

func TestSearchDisjunctiveFaceting_CancelBeforeResponse(t *testing.T) {
	release := make(chan struct{})
	m := &mockRequester{performFn: func(context.Context, transport.Request) (json.RawMessage, error) {
		<-release
		return json.RawMessage(`{"results":[{"hits":[]},{"hits":[],"facets":{"color":{}}}]}`), nil
	}}
	svc := newTestService(t, m)

	var calls atomic.Int32
	op := svc.SearchDisjunctiveFaceting("products", domain.NewQuery(""), []string{"color"}, nil).
		OnComplete(func(domain.AggregatedResult, error) { calls.Add(1) })
	op.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for m.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	op.Cancel()
	close(release)

	if _, err := op.Wait(context.Background()); !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("Wait err = %v, want ErrCancelled", err)
	}
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("completion calls = %d, want 0", calls.Load())
	}
	if op.State() != operation.Cancelled {
		t.Errorf("state = %v", op.State())
	}
}

func TestBatch_CancelledTokenSendsNothing(t *testing.T) {
	m := &mockRequester{}
	svc := newTestService(t, m)
	tok, cancel := operation.NewToken()
	cancel()

	_, err := svc.Batch(context.Background(), tok, []IndexedQuery{{IndexName: "a"}}, StrategyNone)
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if m.calls() != 0 {
		t.Errorf("transport calls = %d, want 0", m.calls())
	}
}
