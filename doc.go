// Package smartpoll implements an adaptive polling engine: a scheduler
// that repeatedly invokes a user-supplied asynchronous factory, adjusting
// the interval between invocations in response to outcomes (success,
// failure, external refresh, host visibility).
//
// Intervals are relative to the completion of the prior attempt, not
// wall-clock phased, and process restarts do not persist any state.
// A Poll instance owns exactly one asynchronous workload; it never
// coalesces requests from multiple callers, and it never cancels
// in-flight factory calls — it supersedes them, letting them run to
// completion with their outcome discarded.
//
// See also [github.com/joeycumines/go-microbatch] and
// [github.com/joeycumines/go-longpoll], for related single-owner
// scheduling primitives in the same family.
package smartpoll
