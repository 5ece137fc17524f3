package multiquery

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// mockRequester delegates to performFn and records requests.
type mockRequester struct {
	mu        sync.Mutex
	requests  []transport.Request
	performFn func(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

func (m *mockRequester) PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.performFn == nil {
		return json.RawMessage(`{"results":[]}`), nil
	}
	return m.performFn(ctx, req)
}

func (m *mockRequester) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func respond(body string) func(context.Context, transport.Request) (json.RawMessage, error) {
	return func(context.Context, transport.Request) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

func newTestService(t *testing.T, m *mockRequester) *Service {
	t.Helper()
	return New(m, transport.Hosts{Read: []string{"dsn-1", "dsn-2"}, Write: []string{"master"}})
}
