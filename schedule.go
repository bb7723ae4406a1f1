package smartpoll

import "time"

// Timer is a handle to an armed, cancellable deferred call. Stop is
// idempotent: calling it more than once, or after the callback has already
// fired, is safe and returns false.
type Timer interface {
	Stop() bool
}

// Scheduler arms a one-shot timer that calls fn after d. It is the engine's
// only mandatory host primitive.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// FrameRequester is the engine's optional next-frame hook: the
// lowest-latency host-provided deferral available, used whenever a tick's
// installed interval is zero. A nil FrameRequester is a legal Config value;
// the engine falls back to Scheduler.AfterFunc(0, fn) in that case, which
// behaves identically on a host without a frame-callback concept.
type FrameRequester interface {
	RequestFrame(fn func()) Timer
}

// VisibilityProvider reports whether the host considers itself hidden (e.g.
// a browser tab in the background). A nil VisibilityProvider is a legal
// Config value; the engine then never treats itself as hidden.
type VisibilityProvider interface {
	Hidden() bool
}

// timerScheduler is the default Scheduler, backed by time.AfterFunc.
type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// schedule arms either the FrameRequester (if set and d == 0) or the
// Scheduler, returning the resulting Timer.
func schedule(sched Scheduler, frame FrameRequester, d time.Duration, fn func()) Timer {
	if d == 0 && frame != nil {
		return frame.RequestFrame(fn)
	}
	return sched.AfterFunc(d, fn)
}
