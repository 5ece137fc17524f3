// Package transport defines the request primitive through which every
// workflow reaches the index service.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Request is one call to the index service.
type Request struct {
	Path     string
	Method   string
	Body     any // encoded as JSON; nil for no body
	Hosts    []string
	IsSearch bool
}

// Requester performs a request against an ordered host pool and returns the
// raw JSON response. Implementations own retry and host failover and must be
// safe for concurrent use.
type Requester interface {
	PerformQuery(ctx context.Context, req Request) (json.RawMessage, error)
}

// RequesterFunc adapts a function to the Requester interface.
type RequesterFunc func(ctx context.Context, req Request) (json.RawMessage, error)

// PerformQuery calls f.
func (f RequesterFunc) PerformQuery(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

// Hosts is the ordered host pool, split by traffic type.
type Hosts struct {
	Read  []string
	Write []string
}

// ForRead returns the pool for reads (search, browse, task status).
// Falls back to the write pool when no read hosts are configured.
func (h Hosts) ForRead() []string {
	if len(h.Read) == 0 {
		return h.Write
	}
	return h.Read
}

// ForWrite returns the pool for mutations.
func (h Hosts) ForWrite() []string {
	if len(h.Write) == 0 {
		return h.Read
	}
	return h.Write
}

// Methods accepted by the index service.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
)

// IndexPath returns the path of a sub-resource of an index.
func IndexPath(index, suffix string) string {
	p := "/1/indexes/" + url.PathEscape(index)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// TaskPath returns the status path of a task on an index.
func TaskPath(index string, taskID int64) string {
	return IndexPath(index, "task/"+strconv.FormatInt(taskID, 10))
}

// MultiQueryPath is the batched multi-index query endpoint.
const MultiQueryPath = "/1/indexes/*/queries"
