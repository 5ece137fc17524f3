// Package operation provides cancellable units of asynchronous work with a
// single, exactly-once completion.
package operation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/logger"
)

// State is the lifecycle state of an Operation.
type State int32

// Operation states. Cancelled and Finished are terminal.
const (
	Pending State = iota
	Executing
	Cancelled
	Finished
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Executing:
		return "executing"
	case Cancelled:
		return "cancelled"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool { return s == Cancelled || s == Finished }

// Func is the body of an operation.
// ctx is the context given to Start and is not cancelled by Operation.Cancel,
// so in-flight transport calls run to completion; bodies observe cancellation
// through tok at their phase boundaries.
type Func[T any] func(ctx context.Context, tok *Token) (T, error)

// Operation runs a Func once and delivers its outcome exactly once.
// A completion callback is never invoked for an operation cancelled before it finished.
type Operation[T any] struct {
	id   string
	name string
	fn   Func[T]
	tok  *Token

	mu         sync.Mutex
	state      State
	started    time.Time
	onComplete func(T, error)
	hook       Hook
	result     T
	err        error
	done       chan struct{}
}

// New creates a pending operation.
func New[T any](name string, fn Func[T]) *Operation[T] {
	return &Operation[T]{
		id:   uuid.NewString(),
		name: name,
		fn:   fn,
		tok:  newToken(),
		done: make(chan struct{}),
	}
}

// ID returns the unique operation identifier.
func (o *Operation[T]) ID() string { return o.id }

// Name returns the operation name.
func (o *Operation[T]) Name() string { return o.name }

// State returns the current state.
func (o *Operation[T]) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// OnComplete sets the completion callback. It has no effect once the
// operation has left the Pending state.
func (o *Operation[T]) OnComplete(fn func(T, error)) *Operation[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Pending {
		o.onComplete = fn
	}
	return o
}

// Info describes an operation that reached a terminal state.
type Info struct {
	ID       string
	Name     string
	State    State
	Duration time.Duration
	Err      error
}

// Hook observes terminal transitions. It runs for cancellations too, after
// the completion callback for finished operations.
type Hook func(Info)

// WithHook sets the terminal-state hook. It has no effect once the operation
// has left the Pending state.
func (o *Operation[T]) WithHook(h Hook) *Operation[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Pending {
		o.hook = h
	}
	return o
}

// Start moves the operation to Executing and runs its body on a new goroutine.
// Starting a non-pending operation is a no-op.
func (o *Operation[T]) Start(ctx context.Context) *Operation[T] {
	o.mu.Lock()
	if o.state != Pending {
		o.mu.Unlock()
		return o
	}
	o.state = Executing
	o.started = time.Now()
	o.mu.Unlock()

	ctx = logger.WithFields(ctx, zap.String("op", o.name), zap.String("operation_id", o.id))
	go func() {
		res, err := o.fn(ctx, o.tok)
		o.finish(res, err)
	}()
	return o
}

// Cancel marks the operation cancelled. In-flight transport calls are not
// interrupted; the completion callback will not be invoked.
// Cancelling a finished operation has no effect.
func (o *Operation[T]) Cancel() {
	o.mu.Lock()
	if o.state.Terminal() {
		o.mu.Unlock()
		return
	}
	o.state = Cancelled
	o.tok.cancel()
	close(o.done)
	info, hook := o.info(nil), o.hook
	o.mu.Unlock()

	if hook != nil {
		hook(info)
	}
}

// finish records the outcome unless the operation already reached a terminal state.
func (o *Operation[T]) finish(res T, err error) {
	o.mu.Lock()
	if o.state != Executing {
		o.mu.Unlock()
		return
	}
	o.state = Finished
	o.result = res
	o.err = err
	cb, info, hook := o.onComplete, o.info(err), o.hook
	close(o.done)
	o.mu.Unlock()

	if cb != nil {
		cb(res, err)
	}
	if hook != nil {
		hook(info)
	}
}

// info must be called with mu held.
func (o *Operation[T]) info(err error) Info {
	var d time.Duration
	if !o.started.IsZero() {
		d = time.Since(o.started)
	}
	return Info{ID: o.id, Name: o.name, State: o.state, Duration: d, Err: err}
}

// Done is closed when the operation reaches a terminal state.
func (o *Operation[T]) Done() <-chan struct{} { return o.done }

// Wait blocks until the operation is terminal or ctx is done.
// It returns domain.ErrCancelled for a cancelled operation.
func (o *Operation[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-o.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Cancelled {
		return zero, domain.ErrCancelled
	}
	return o.result, o.err
}

// Run starts the operation and waits for it. If ctx is done first the
// operation is cancelled.
func (o *Operation[T]) Run(ctx context.Context) (T, error) {
	o.Start(ctx)
	res, err := o.Wait(ctx)
	if ctx.Err() != nil {
		o.Cancel()
	}
	return res, err
}
