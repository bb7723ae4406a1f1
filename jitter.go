package smartpoll

import (
	"math"
	"math/rand/v2"
	"time"
)

// defaultRand is the package default for Config.Rand: a uniform float64 in
// [0, 1), backed by math/rand/v2's global, concurrency-safe generator.
func defaultRand() float64 {
	return rand.Float64()
}

// jitterDuration implements the package's jitter algorithm: a bounded random
// perturbation of base, as a fraction of base given by factor. The first
// random draw picks the direction (negative below 0.5), the second scales
// the offset, and a negative result is reflected to its absolute value. Callers are responsible for clamping the result to
// [min, max]; this function only guarantees non-negativity.
//
// factor == 0 disables jitter entirely, returning base unperturbed (modulo
// the random source not being invoked at all, which tests rely on).
func jitterDuration(base time.Duration, factor float64, randFn func() float64) time.Duration {
	if factor == 0 {
		return base
	}

	direction := 1.0
	if randFn() < 0.5 {
		direction = -1.0
	}

	eps := randFn()
	delta := eps * float64(base) * math.Abs(factor) * direction

	candidate := math.Round(float64(base) + delta)
	if candidate < 0 {
		candidate = -candidate
	}

	return time.Duration(candidate)
}
