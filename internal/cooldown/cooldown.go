// Package cooldown provides the idle barrier between benchmark phases.
//
// The barrier exists so one phase's residual load (in-flight connections,
// target backlog) cannot bias the next phase's timing. It is a first-class
// step, not an incidental sleep: phase results are only comparable when the
// target has drained between trials.
package cooldown

import "time"

// Barrier imposes a fixed idle interval. Not cancellable: a partially
// drained target is exactly the contamination the barrier prevents.
type Barrier struct {
	Duration time.Duration
}

// Wait blocks for the configured duration. A zero or negative duration is a
// no-op.
func (b Barrier) Wait() {
	if b.Duration <= 0 {
		return
	}
	time.Sleep(b.Duration)
}
