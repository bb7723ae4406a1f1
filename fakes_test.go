package smartpoll

import (
	"sync"
	"time"
)

// manualTimer is a Timer whose callback only ever fires when the owning
// manualScheduler is told to, never on a real clock. Grounded on the fake
// ticker substitution pattern in _teacher_ref/catrate/limiter_test.go.
type manualTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler records every armed timer and fires them only on demand,
// making tests deterministic without sleeping.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{fn: fn, delay: d}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// pending returns the first armed timer that has not been stopped, if any.
// A timer that has fired stays pending until it is stopped.
func (s *manualScheduler) pending() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if !t.stopped {
			return t
		}
	}
	return nil
}

// fire invokes the oldest pending timer's callback, reporting whether one
// was found.
func (s *manualScheduler) fire() bool {
	t := s.pending()
	if t == nil {
		return false
	}
	t.fn()
	return true
}

// delayOfPending returns the delay the oldest pending timer was armed with.
func (s *manualScheduler) delayOfPending() time.Duration {
	t := s.pending()
	if t == nil {
		return -1
	}
	return t.delay
}

// fixedRand returns a Config.Rand implementation that always yields v,
// disabling randomness in the jitter algorithm's epsilon term while still
// exercising the code path (unlike Variance: 0, which skips it entirely).
func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

// sequenceRand returns a Config.Rand that yields each of vs in turn, then
// repeats the final value.
func sequenceRand(vs ...float64) func() float64 {
	var i int
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		v := vs[i]
		if i < len(vs)-1 {
			i++
		}
		return v
	}
}

// stepClock is a Config.Clock that advances by step on every call, starting
// at start.
type stepClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{current: start, step: step}
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.current
	c.current = c.current.Add(c.step)
	return t
}
