package smartpoll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_ResolveSettlesWaitersAndDone(t *testing.T) {
	tick := newTick[int]()
	assert.Equal(t, TickPending, tick.State())

	done := tick.Done()
	select {
	case <-done:
		t.Fatal("Done must not be closed before settlement")
	default:
	}

	want := State[int]{Phase: PhaseResolved, Payload: 1}
	tick.resolve(want)

	assert.Equal(t, TickResolved, tick.State())
	select {
	case <-done:
	default:
		t.Fatal("Done should be closed after resolve")
	}

	got, err := tick.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTick_RejectSettlesWaiters(t *testing.T) {
	tick := newTick[int]()
	reason := &DisposedError{Name: "p"}
	tick.reject(reason)

	assert.Equal(t, TickRejected, tick.State())
	_, err := tick.Wait(context.Background())
	assert.Same(t, error(reason), err)
}

func TestTick_SettleIsIdempotent(t *testing.T) {
	tick := newTick[int]()
	tick.resolve(State[int]{Payload: 1})
	tick.resolve(State[int]{Payload: 2})
	tick.reject(errors.New("too late"))

	got, err := tick.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Payload)
}

func TestTick_WaitRespectsContextCancellation(t *testing.T) {
	tick := newTick[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tick.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TickPending, tick.State())
}

func TestTick_WaitBlocksUntilResolved(t *testing.T) {
	tick := newTick[int]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		tick.resolve(State[int]{Payload: 42})
	}()

	got, err := tick.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got.Payload)
}
