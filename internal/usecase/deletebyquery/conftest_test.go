package deletebyquery

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

// mockRequester serves scripted browse and batch responses and records the
// sequence of calls as "browse"/"batch".
type mockRequester struct {
	mu       sync.Mutex
	browses  []string
	batches  []string
	requests []transport.Request
	trace    []string
	errFn    func(req transport.Request) error
}

func (m *mockRequester) PerformQuery(_ context.Context, req transport.Request) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	kind := "browse"
	if strings.HasSuffix(req.Path, "/batch") {
		kind = "batch"
	}
	m.trace = append(m.trace, kind)

	if m.errFn != nil {
		if err := m.errFn(req); err != nil {
			return nil, err
		}
	}

	queue := &m.browses
	fallback := `{"hits":[]}`
	if kind == "batch" {
		queue = &m.batches
		fallback = `{"taskID":1}`
	}
	if len(*queue) == 0 {
		return json.RawMessage(fallback), nil
	}
	body := (*queue)[0]
	*queue = (*queue)[1:]
	return json.RawMessage(body), nil
}

func (m *mockRequester) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.trace...)
}

// mockWaiter records waited task IDs.
type mockWaiter struct {
	mu     sync.Mutex
	tasks  []int64
	waitFn func(ctx context.Context, tok *operation.Token, taskID int64) error
}

func (m *mockWaiter) Wait(ctx context.Context, tok *operation.Token, _ string, taskID int64) (domain.TaskStatus, error) {
	m.mu.Lock()
	m.tasks = append(m.tasks, taskID)
	fn := m.waitFn
	m.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, tok, taskID); err != nil {
			return domain.TaskStatus{}, err
		}
	}
	return domain.TaskStatus{Status: domain.TaskPublished}, nil
}

func newTestService(t *testing.T, req *mockRequester, tasks *mockWaiter) *Service {
	t.Helper()
	return New(req, transport.Hosts{Read: []string{"dsn"}, Write: []string{"master"}}, tasks)
}

func decodeBody(t *testing.T, body any) map[string]any {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}
