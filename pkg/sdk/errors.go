package indexflow

import (
	"github.com/kailas-cloud/indexflow/internal/domain"
	transporthttp "github.com/kailas-cloud/indexflow/internal/transport/http"
	"github.com/kailas-cloud/indexflow/internal/usecase/multiquery"
)

// Sentinel errors re-exported from the internal layers.
// Use errors.Is() to check.
var (
	ErrTransport       = domain.ErrTransport
	ErrInvalidResponse = domain.ErrInvalidResponse
	ErrCancelled       = domain.ErrCancelled
	ErrNoHosts         = transporthttp.ErrNoHosts
	ErrEmptyBatch      = multiquery.ErrEmptyBatch
	ErrUnknownStrategy = multiquery.ErrUnknownStrategy
)

// Error is the structured workflow error; match it with errors.As.
type Error = domain.Error

// StatusError is a non-retryable HTTP error from the index service.
type StatusError = transporthttp.StatusError

// Kind classifies an Error.
type Kind = domain.Kind

// Error kinds.
const (
	KindTransport       = domain.KindTransport
	KindInvalidResponse = domain.KindInvalidResponse
)

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind { return domain.KindOf(err) }
