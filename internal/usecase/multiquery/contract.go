package multiquery

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// Requester is the transport primitive used for batched queries.
type Requester interface {
	PerformQuery(ctx context.Context, req transport.Request) (json.RawMessage, error)
}
