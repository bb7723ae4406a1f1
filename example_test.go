package smartpoll_test

import (
	"context"
	"fmt"
	"time"

	smartpoll "github.com/joeycumines/go-smartpoll"
)

// Demonstrates polling an endpoint at a nominal interval, backing off
// automatically whenever it errors, and observing every transition.
func ExamplePoll_observeTransitions() {
	type Status struct{ OK bool }

	var calls int
	poll, err := smartpoll.New(smartpoll.Config[Status]{
		Name:     "health-check",
		Interval: 30 * time.Second,
		Max:      5 * time.Minute,
		Variance: 0.1,
	}, func(ctx context.Context, prior smartpoll.State[Status]) (Status, error) {
		calls++
		return Status{OK: true}, nil
	})
	if err != nil {
		panic(err)
	}
	defer poll.Dispose()

	poll.OnTicked(func(s smartpoll.State[Status]) {
		fmt.Printf("tick: phase=%s\n", s.Phase)
	})
}

// Demonstrates forcing an immediate re-check, bypassing whatever backoff is
// currently in effect.
func ExamplePoll_refresh() {
	poll, err := smartpoll.New(smartpoll.Config[int]{
		Interval: time.Minute,
		Max:      time.Hour,
	}, func(ctx context.Context, prior smartpoll.State[int]) (int, error) {
		return 1, nil
	})
	if err != nil {
		panic(err)
	}
	defer poll.Dispose()

	// some external signal indicates the cached value is now stale
	tick := poll.Refresh()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := tick.Wait(ctx); err != nil {
		fmt.Println("refresh did not settle in time:", err)
	}
}
