package operation

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/indexflow/internal/domain"
)

// Token carries the cancellation signal of one operation to its body.
type Token struct {
	once sync.Once
	ch   chan struct{}
}

func newToken() *Token {
	return &Token{ch: make(chan struct{})}
}

// NewToken returns a standalone token, for driving operation bodies directly.
func NewToken() (*Token, func()) {
	t := newToken()
	return t, t.cancel
}

func (t *Token) cancel() {
	t.once.Do(func() { close(t.ch) })
}

// Done is closed once the operation is cancelled.
func (t *Token) Done() <-chan struct{} { return t.ch }

// Cancelled reports whether the operation has been cancelled.
func (t *Token) Cancelled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// Err returns domain.ErrCancelled once cancelled, nil before.
func (t *Token) Err() error {
	if t.Cancelled() {
		return domain.ErrCancelled
	}
	return nil
}

// Sleep suspends for d without holding any shared resource.
// It returns domain.ErrCancelled if the token is cancelled first, or ctx.Err()
// if ctx ends first.
func (t *Token) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return t.Err()
	case <-t.ch:
		return domain.ErrCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}
