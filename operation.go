package graw

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Operation is the handle of one in-flight endpoint call. It completes after
// the call's callback has returned.
//
// A nil *Operation is returned when a call was refused before dispatch; all
// methods are safe on it and report an already completed operation.
type Operation struct {
	id       uuid.UUID
	endpoint string
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func newOperation(ctx context.Context, endpoint string) *Operation {
	opCtx, cancel := context.WithCancel(ctx)
	return &Operation{
		id:       uuid.New(),
		endpoint: endpoint,
		ctx:      opCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// ID returns the identifier attached to the call's log lines.
func (o *Operation) ID() string {
	if o == nil {
		return ""
	}
	return o.id.String()
}

// Endpoint returns the name of the endpoint being called.
func (o *Operation) Endpoint() string {
	if o == nil {
		return ""
	}
	return o.endpoint
}

// Cancel aborts the call. The callback still runs once, with a failure
// wrapping context.Canceled unless the call already finished.
func (o *Operation) Cancel() {
	if o == nil {
		return
	}
	o.cancel()
}

// Done is closed once the callback has returned.
func (o *Operation) Done() <-chan struct{} {
	if o == nil {
		return closedChan
	}
	return o.done
}

// Wait blocks until the operation completes or ctx is done.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Operation) finish() {
	o.once.Do(func() {
		o.cancel()
		close(o.done)
	})
}
