package smartpoll

import (
	"context"
	"sync"
)

// TickState describes the state of a Tick: pending until the tick it
// represents has begun (or the Poll has been disposed), then settled.
type TickState int

const (
	// TickPending indicates the represented tick has not yet begun.
	TickPending TickState = iota
	// TickResolved indicates the represented tick has begun: its State has
	// been installed. The factory call for that State starts only once the
	// State's interval has elapsed (or is skipped, in the host-hidden case).
	TickResolved
	// TickRejected indicates the Poll was disposed before the represented
	// tick began.
	TickRejected
)

// Tick is a one-shot handle to the next scheduled tick of a Poll. It is a
// trimmed adaptation of a JavaScript promise: it settles exactly once,
// either by resolving with the State that was installed, or by rejecting
// with a *DisposedError.
//
// Tick is safe for concurrent use; multiple goroutines may call Wait or
// Done concurrently.
type Tick[T any] struct {
	mu          sync.Mutex
	state       TickState
	result      State[T]
	err         error
	subscribers []chan struct{}
}

func newTick[T any]() *Tick[T] {
	return &Tick[T]{}
}

// State returns the current TickState.
func (t *Tick[T]) State() TickState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel that is closed once the tick settles, whether by
// resolution or rejection. It is safe to call Done multiple times.
func (t *Tick[T]) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan struct{})
	if t.state != TickPending {
		close(ch)
		return ch
	}

	// fanOut closes every subscriber channel; reuse that plumbing by
	// registering a normal channel and closing it on settle.
	raw := make(chan struct{})
	t.subscribers = append(t.subscribers, raw)
	go func() {
		<-raw
		close(ch)
	}()
	return ch
}

// Wait blocks until the tick settles or ctx is done, whichever comes first.
// On resolution it returns the installed State and a nil error. On
// rejection (Dispose having occurred) it returns the zero State and a
// *DisposedError. If ctx is done first, it returns ctx.Err().
func (t *Tick[T]) Wait(ctx context.Context) (State[T], error) {
	t.mu.Lock()
	if t.state != TickPending {
		state, err := t.result, t.err
		t.mu.Unlock()
		return state, err
	}
	ch := make(chan struct{})
	t.subscribers = append(t.subscribers, ch)
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		var zero State[T]
		return zero, ctx.Err()
	case <-ch:
		t.mu.Lock()
		state, err := t.result, t.err
		t.mu.Unlock()
		return state, err
	}
}

// resolve settles the tick successfully. A no-op if already settled.
func (t *Tick[T]) resolve(s State[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TickPending {
		return
	}
	t.state = TickResolved
	t.result = s
	t.fanOut()
}

// reject settles the tick with a failure. A no-op if already settled. Unlike
// a JavaScript promise, an unobserved rejection here is inert: nothing in
// Go warns about unconsumed channel values, so there is no silent-handler
// bookkeeping to do.
func (t *Tick[T]) reject(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TickPending {
		return
	}
	t.state = TickRejected
	t.err = err
	t.fanOut()
}

// fanOut must be called with t.mu held.
func (t *Tick[T]) fanOut() {
	for _, ch := range t.subscribers {
		close(ch)
	}
	t.subscribers = nil
}
