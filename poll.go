package smartpoll

import (
	"context"
	"sync"
	"time"
)

// Factory produces the next value of T, given the prior installed State. It
// is called at most once per tick. Calls can overlap: a stale call may still
// be running (unobserved) when a newer one starts, per the supersession rules
// documented on Refresh and Dispose.
type Factory[T any] func(ctx context.Context, prior State[T]) (T, error)

// Gate, if configured, must settle before the first Factory invocation is
// scheduled. Its outcome does not stop polling either way; a failing Gate
// only changes the installed phase from WhenResolved to WhenRejected.
type Gate func(ctx context.Context) error

// Poll runs a single adaptive polling loop for a value of type T. The zero
// value is not usable; construct one with New.
//
// Poll is safe for concurrent use: Refresh, Dispose, and every accessor may
// be called from any goroutine, including from within a Factory. Accessors
// may also be called from within an observer callback. Refresh and Dispose
// called from within an OnTicked callback deadlock, because delivery holds
// an internal lock that both acquire.
type Poll[T any] struct {
	resolved[T]
	factory Factory[T]

	mu          sync.Mutex
	state       State[T]
	outstanding *Tick[T]
	pending     Timer
	disposed    bool

	// notifyMu serializes delivery of tick resolution and the ticked/disposed
	// broadcasts across goroutines, so that two transitions installed by
	// different goroutines cannot have their deliveries observed out of
	// installation order. It is always acquired while mu is still held, and
	// released only after delivery completes, so the order in which
	// goroutines acquire it matches the order in which they installed their
	// State under mu.
	notifyMu sync.Mutex

	ticked   *Broadcaster[State[T]]
	disposal *Broadcaster[struct{}]
}

// New constructs a Poll and begins its lifecycle: if cfg.Gate is set, it is
// invoked in a new goroutine and the first factory call is deferred until it
// settles; otherwise the first factory call is scheduled immediately.
//
// New panics if factory is nil, following the programmer-error convention of
// _teacher_ref/microbatch/microbatch.go's NewBatcher. It returns a
// *ConfigError if cfg's numeric fields are mutually inconsistent.
func New[T any](cfg Config[T], factory Factory[T]) (*Poll[T], error) {
	if factory == nil {
		panic("smartpoll: nil factory")
	}

	r, err := resolveConfig[T](cfg)
	if err != nil {
		return nil, err
	}

	p := &Poll[T]{
		resolved: r,
		factory:  factory,
		ticked:   newBroadcaster[State[T]](),
		disposal: newBroadcaster[struct{}](),
	}
	p.state = State[T]{Phase: PhaseStandby, Tick: p.clock()}
	p.outstanding = newTick[T]()

	if p.gate == nil {
		p.bootstrap(nil)
	} else {
		go func() {
			p.bootstrap(p.safeGateCall())
		}()
	}

	return p, nil
}

// bootstrap installs the first real schedule, once the (possibly absent)
// Gate has settled.
func (p *Poll[T]) bootstrap(gateErr error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	s := gateSettledState[T](p.limits, p.clock(), gateErr)
	p.installAndNotify(s)

	if gateErr != nil {
		p.logger.Warning().Str("name", p.name).Err(gateErr).Log("gate rejected; polling proceeding anyway")
	}
}

// installLocked replaces p.state and p.outstanding with s and a freshly
// minted Tick, cancels any pending timer, and arms a new one for s.Interval.
// It must be called with p.mu held, and returns the superseded Tick (never
// nil), the freshly minted Tick, the State being replaced, and s itself, for
// installAndNotify to deliver once p.mu is released.
func (p *Poll[T]) installLocked(s State[T]) (old, next *Tick[T], prev, installed State[T]) {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}

	old = p.outstanding
	prev = p.state
	next = newTick[T]()
	p.state = s
	p.outstanding = next

	p.pending = schedule(p.scheduler, p.frame, s.Interval, func() {
		p.onTimerFired(next)
	})

	return old, next, prev, s
}

// installAndNotify calls installLocked, then delivers the resulting
// resolution and ticked broadcast under notifyMu, releasing mu first. It
// must be called with p.mu held, and returns with p.mu released. Acquiring
// notifyMu before releasing mu, rather than after, is what pins the delivery
// order to the installation order: a second goroutine cannot even attempt
// its own delivery until it has acquired mu (which requires this goroutine
// to have released it), by which point this goroutine already holds
// notifyMu and will deliver first.
func (p *Poll[T]) installAndNotify(s State[T]) (next *Tick[T]) {
	old, next, prev, installed := p.installLocked(s)
	p.notifyMu.Lock()
	p.mu.Unlock()

	old.resolve(installed)
	p.ticked.emit(installed)
	p.logger.Debug().Str("name", p.name).Stringer("from", prev.Phase).Stringer("to", installed.Phase).Log("phase transition")

	p.notifyMu.Unlock()
	return next
}

// Refresh preempts any in-flight schedule or backoff, installing a Refresh
// state (interval zero) and arming the factory to run on the next tick of
// the event loop. It returns the new outstanding Tick. A Factory call already
// in flight is not canceled; its eventual result is discarded.
//
// Calling Refresh on a disposed Poll is a no-op; it returns a Tick already
// rejected with a *DisposedError.
func (p *Poll[T]) Refresh() *Tick[T] {
	p.mu.Lock()
	if p.disposed {
		t := p.outstanding
		p.mu.Unlock()
		return t
	}

	s := refreshState[T](p.clock())
	return p.installAndNotify(s)
}

// Dispose permanently stops the Poll: it cancels any pending timer, rejects
// the outstanding Tick with a *DisposedError, emits the disposed broadcast
// exactly once, and releases every registered observer. It is idempotent;
// calling Dispose more than once is a safe no-op.
//
// A Factory or Gate call already in flight when Dispose runs is not
// canceled — its eventual result is simply discarded, per the package's
// supersession-over-cancellation design (see SPEC_FULL.md).
func (p *Poll[T]) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	outstanding := p.outstanding
	name := p.name
	p.notifyMu.Lock()
	p.mu.Unlock()

	outstanding.reject(&DisposedError{Name: name})
	p.disposal.emit(struct{}{})
	p.ticked.clear()
	p.disposal.clear()

	p.notifyMu.Unlock()

	p.logger.Debug().Str("name", name).Log("disposed")
}

// Disposed reports whether Dispose has been called.
func (p *Poll[T]) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// State returns the most recently installed State.
func (p *Poll[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Tick returns the current outstanding Tick: the handle to the next
// transition this Poll will make, or the terminal rejected Tick if this Poll
// is disposed.
func (p *Poll[T]) Tick() *Tick[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Name returns the configured diagnostic name, "unknown" if unset.
func (p *Poll[T]) Name() string { return p.name }

// Interval returns the configured nominal interval.
func (p *Poll[T]) Interval() time.Duration { return p.limits.interval }

// Max returns the configured upper bound on any computed interval.
func (p *Poll[T]) Max() time.Duration { return p.limits.max }

// Min returns the configured lower bound on any computed interval.
func (p *Poll[T]) Min() time.Duration { return p.limits.min }

// Variance returns the configured jitter amplitude.
func (p *Poll[T]) Variance() float64 { return p.limits.variance }

// OnTicked subscribes fn to every future State installation, in the order
// installations occur. The returned function removes the subscription; it
// is safe to call more than once.
func (p *Poll[T]) OnTicked(fn func(State[T])) (unsubscribe func()) {
	return p.ticked.Subscribe(fn)
}

// OnDisposed subscribes fn to the single disposal event, if one hasn't
// already fired. Subscribing after Dispose has already run does not invoke
// fn; callers that must not miss disposal should check Disposed first.
func (p *Poll[T]) OnDisposed(fn func()) (unsubscribe func()) {
	return p.disposal.Subscribe(func(struct{}) { fn() })
}
