package smartpoll

import (
	"context"
	"time"
)

// Config models optional configuration for New. The zero value of every
// field means "use the documented default", so the zero Config is an
// all-defaults Config.
type Config[T any] struct {
	// Interval is the nominal delay between successful attempts.
	// Defaults to 0, if unset (never changed at runtime).
	Interval time.Duration

	// Max is the upper bound on any computed interval. Must satisfy
	// Max >= Interval and Max >= Min. Defaults to Interval, if 0.
	Max time.Duration

	// Min is the lower bound on any computed interval. Must satisfy
	// Min <= Interval. Defaults to 0, if unset.
	Min time.Duration

	// Variance is the jitter amplitude, as a fraction of the base interval.
	// Zero disables jitter. Defaults to 0.
	Variance float64

	// Name is an opaque diagnostic label. Defaults to "unknown".
	Name string

	// Gate, if non-nil, must settle (successfully or not) before the first
	// factory invocation is scheduled.
	Gate Gate

	// Context is threaded through to every Gate and Factory invocation. It
	// is never canceled by Dispose or Refresh — the engine supersedes
	// in-flight work rather than canceling it. Defaults to
	// context.Background().
	Context context.Context

	// Scheduler provides the one-shot, cancellable timer the engine is
	// built on. Defaults to a time.AfterFunc-backed implementation.
	Scheduler Scheduler

	// Frame, if non-nil, is used instead of Scheduler whenever a tick's
	// installed interval is zero.
	Frame FrameRequester

	// Visibility, if non-nil, lets the engine skip factory invocations
	// while the host reports itself hidden.
	Visibility VisibilityProvider

	// Clock supplies the current time, recorded on every State. Defaults to
	// time.Now.
	Clock func() time.Time

	// Rand supplies uniform float64 values in [0, 1) for jitter. Defaults to
	// a generator backed by math/rand/v2.
	Rand func() float64

	// Logger receives structured diagnostics. Defaults to a disabled
	// logger.
	Logger *Logger
}

// resolved is the post-validation, post-defaulting configuration actually
// used by a Poll, pulled out of Config so defaulting happens exactly once.
type resolved[T any] struct {
	limits
	name       string
	gate       Gate
	ctx        context.Context
	scheduler  Scheduler
	frame      FrameRequester
	visibility VisibilityProvider
	clock      func() time.Time
	logger     *Logger
}

func resolveConfig[T any](cfg Config[T]) (resolved[T], error) {
	interval := cfg.Interval
	min := cfg.Min
	max := cfg.Max
	if max == 0 {
		max = interval
	}

	if interval > max {
		return resolved[T]{}, &ConfigError{Reason: "interval > max"}
	}
	if min > max {
		return resolved[T]{}, &ConfigError{Reason: "min > max"}
	}
	if min > interval {
		return resolved[T]{}, &ConfigError{Reason: "min > interval"}
	}

	name := cfg.Name
	if name == "" {
		name = "unknown"
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = timerScheduler{}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	randFn := cfg.Rand
	if randFn == nil {
		randFn = defaultRand
	}

	return resolved[T]{
		limits: limits{
			interval: interval,
			min:      min,
			max:      max,
			variance: cfg.Variance,
			rand:     randFn,
		},
		name:       name,
		gate:       cfg.Gate,
		ctx:        ctx,
		scheduler:  scheduler,
		frame:      cfg.Frame,
		visibility: cfg.Visibility,
		clock:      clock,
		logger:     logOrDefault(cfg.Logger),
	}, nil
}
