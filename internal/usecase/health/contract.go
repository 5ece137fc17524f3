package health

import "github.com/kailas-cloud/indexflow/internal/transport"

// Requester sends liveness checks to the index service.
type Requester = transport.Requester
