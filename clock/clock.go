// Package clock provides an injectable notion of time for the filesystem
// core, so that timestamp invariants (entry.go's monotonic creation/
// modified/access times) can be tested deterministically instead of racing
// against the wall clock.
package clock

import "time"

// Clock is satisfied by RealClock, FakeClock, and SimulatedClock below.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

var (
	_ Clock = RealClock{}
	_ Clock = &FakeClock{}
	_ Clock = &SimulatedClock{}
)
