package graphql

import (
	"context"
	"sync"
)

// closedChan returns an already closed channel, the "nothing to wait for"
// signal shared by the tracker and the batch pipeline.
func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Tracker keeps the set of in-flight futures and lets callers wait for the
// set to drain. It only observes completion and never alters outcomes.
type Tracker struct {
	mu       sync.Mutex
	inflight map[*Future]struct{}
	waiting  []chan struct{}
	onChange func(size int) // called with mu held, must not block
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inflight: make(map[*Future]struct{})}
}

// Add registers f; it is removed again once it settles.
func (t *Tracker) Add(f *Future) {
	t.mu.Lock()
	t.inflight[f] = struct{}{}
	t.changedLocked()
	t.mu.Unlock()

	f.whenSettled(func(*Response, error) { t.drop(f) })
}

func (t *Tracker) drop(f *Future) {
	t.mu.Lock()
	if _, ok := t.inflight[f]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.inflight, f)
	t.changedLocked()

	// Waiters are detached before release so that one calling Drained again
	// joins the next drain instead of this one.
	var release []chan struct{}
	if len(t.inflight) == 0 {
		release = t.waiting
		t.waiting = nil
	}
	t.mu.Unlock()

	for _, ch := range release {
		close(ch)
	}
}

// changedLocked reports the size while mu is held, so observers never see
// an older size after a newer one.
func (t *Tracker) changedLocked() {
	if t.onChange != nil {
		t.onChange(len(t.inflight))
	}
}

// Size returns the number of futures that have not settled yet.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// Drained returns a channel closed the next time the tracked set becomes
// empty, or an already closed channel if it is empty now. The channel stays
// registered until that drain; use Wait to give up early.
func (t *Tracker) Drained() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registerLocked()
}

func (t *Tracker) registerLocked() chan struct{} {
	if len(t.inflight) == 0 {
		return closedChan()
	}
	ch := make(chan struct{})
	t.waiting = append(t.waiting, ch)
	return ch
}

// Wait blocks until every tracked future has settled or ctx ends.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	ch := t.registerLocked()
	t.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		t.forget(ch)
		return ctx.Err()
	}
}

// forget unregisters a waiter that stopped waiting. A waiter already
// released by a drain is no longer listed.
func (t *Tracker) forget(ch chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, w := range t.waiting {
		if w == ch {
			t.waiting = append(t.waiting[:i], t.waiting[i+1:]...)
			return
		}
	}
}
