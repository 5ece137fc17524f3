package deletebyquery

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

// Requester is the transport primitive used for browse and batch calls.
type Requester interface {
	PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

// TaskWaiter blocks until a task is published, sharing the caller's token.
type TaskWaiter interface {
	Wait(ctx context.Context, tok *operation.Token, index string, taskID int64) (domain.TaskStatus, error)
}
