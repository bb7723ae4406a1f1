package smartpoll

// This file holds the logic that runs when a scheduled tick actually fires:
// deciding whether to skip it (host hidden), invoking the factory, and
// deciding whether a settled factory call is still current once it returns.
// It is grounded on the dispatch loop in
// _teacher_ref/eventloop/loop.go, generalized from a single FIFO job queue
// to the identity-token supersession scheme described in SPEC_FULL.md.

// onTimerFired runs when the Scheduler (or FrameRequester) calls back for
// owner. owner is the outstanding Tick captured at schedule time; if it is
// no longer p.outstanding, this firing is stale and ignored. Stale firings
// can only happen if a Timer's Stop call raced its own callback, which
// Go's time.AfterFunc documents as possible.
func (p *Poll[T]) onTimerFired(owner *Tick[T]) {
	p.mu.Lock()
	if p.disposed || p.outstanding != owner {
		p.mu.Unlock()
		return
	}

	if p.visibility != nil && p.visibility.Hidden() {
		s := standbyState[T](p.limits, p.clock())
		p.installAndNotify(s)
		return
	}

	prior := p.state
	p.mu.Unlock()

	go p.invokeFactory(owner, prior)
}

// invokeFactory calls the factory outside any lock, then installs the
// resulting State, provided owner is still current when the call returns.
func (p *Poll[T]) invokeFactory(owner *Tick[T], prior State[T]) {
	value, err := p.safeFactoryCall(prior)

	p.mu.Lock()
	if p.disposed || p.outstanding != owner {
		p.mu.Unlock()
		return
	}

	var s State[T]
	if err != nil {
		s = failureState[T](p.limits, p.clock(), prior.Interval, err)
	} else {
		s = successState[T](p.limits, p.clock(), prior.Phase, value)
	}
	p.installAndNotify(s)

	if err != nil {
		p.logger.Warning().Str("name", p.name).Err(err).Log("factory rejected; backing off")
	}
}

// safeFactoryCall recovers a panicking factory into an error, the same
// convention _teacher_ref/microbatch/microbatch.go uses for its processor
// callback.
func (p *Poll[T]) safeFactoryCall(prior State[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredFactoryPanic(r)
		}
	}()
	return p.factory(p.ctx, prior)
}

// safeGateCall is the Gate equivalent of safeFactoryCall.
func (p *Poll[T]) safeGateCall() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredFactoryPanic(r)
		}
	}()
	return p.gate(p.ctx)
}

func recoveredFactoryPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
