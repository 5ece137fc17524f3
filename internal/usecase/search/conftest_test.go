package search

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

type mockRequester struct {
	mu        sync.Mutex
	requests  []transport.Request
	performFn func(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

func (m *mockRequester) PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.performFn
	m.mu.Unlock()
	if fn == nil {
		return json.RawMessage(`{"hits":[{"objectID":"1"}],"nbHits":1}`), nil
	}
	return fn(ctx, req)
}

func (m *mockRequester) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func newTestService(t *testing.T, m *mockRequester) *Service {
	t.Helper()
	return New(m, transport.Hosts{Read: []string{"dsn"}, Write: []string{"master"}})
}
