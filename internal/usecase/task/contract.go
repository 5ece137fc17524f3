package task

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// Requester is the transport primitive used to read task status.
type Requester interface {
	PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error)
}
