package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// mockRequester replays scripted responses and records requests.
type mockRequester struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []transport.Request
}

type mockResponse struct {
	body string
	err  error
}

func (m *mockRequester) PerformQuery(_ context.Context, req transport.Request) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return json.RawMessage(`{"status":"notPublished"}`), nil
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.body), nil
}

func (m *mockRequester) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func newTestService(t *testing.T, responses ...mockResponse) (*Service, *mockRequester) {
	t.Helper()
	m := &mockRequester{responses: responses}
	svc := New(m, transport.Hosts{Read: []string{"read-1"}, Write: []string{"write-1"}}).
		WithBackoff(Backoff{Base: time.Millisecond, Max: 4 * time.Millisecond})
	return svc, m
}

func transportHosts() transport.Hosts {
	return transport.Hosts{Read: []string{"read-1"}}
}
