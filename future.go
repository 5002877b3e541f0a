package graphql

import (
	"context"
	"sync"
)

// Future is the handle returned by Client.Query. It settles exactly once with
// either a *Response or an error and is safe for concurrent use.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	resp      *Response
	err       error
	callbacks []func(*Response, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settledFuture returns a future that has already completed.
func settledFuture(resp *Response, err error) *Future {
	f := newFuture()
	f.settle(resp, err)
	return f
}

// settle stores the outcome, runs completion hooks and then releases Await.
// Hooks run before Done closes so their bookkeeping is visible to anyone who
// observed settlement. Returns false if the future was already settled.
func (f *Future) settle(resp *Response, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.resp = resp
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(resp, err)
	}
	close(f.done)
	return true
}

func (f *Future) resolve(resp *Response) bool { return f.settle(resp, nil) }

func (f *Future) reject(err error) bool { return f.settle(nil, err) }

// whenSettled registers fn to run on settlement, or runs it right away if the
// future has already settled.
func (f *Future) whenSettled(fn func(*Response, error)) {
	f.mu.Lock()
	if f.settled {
		resp, err := f.resp, f.err
		f.mu.Unlock()
		fn(resp, err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends. A cancelled ctx only
// stops the wait; the underlying query keeps running.
func (f *Future) Await(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result reports the outcome without blocking. ok is false while pending.
func (f *Future) Result() (resp *Response, err error, ok bool) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.resp, f.err, true
	default:
		return nil, nil, false
	}
}
