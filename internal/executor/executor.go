package executor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// Executor dispatches a batch of request specs under a selectable
// concurrency strategy, racing completion against an aggregate deadline.
type Executor struct {
	opt       Options
	completed atomic.Int64
}

func New(opt Options) *Executor {
	opt.normalize()
	return &Executor{opt: opt}
}

// Completed reports how many dispatches have produced a result so far.
// Safe to call concurrently with Run; used by progress reporters.
func (e *Executor) Completed() int64 {
	return e.completed.Load()
}

type indexedRaw struct {
	idx int
	raw outcome.Raw
}

// Run dispatches every spec and returns exactly one Raw per spec, in input
// (tag) order regardless of completion order.
//
// Under SelectAll, results completed before the aggregate deadline are kept
// and the rest fail with their deadline reason; the batch as a whole never
// fails. Under JoinAll, a deadline expiry discards every result, including
// ones that individually succeeded.
//
// Cancellation is cooperative: pending dispatches are signalled through the
// context, but Run never waits for them to acknowledge. Late results land
// in a buffer sized to the batch and are simply never read.
func (e *Executor) Run(ctx context.Context, specs []reqspec.Spec) []outcome.Raw {
	e.completed.Store(0)

	results := make([]outcome.Raw, len(specs))
	for i := range results {
		results[i] = outcome.Raw{Err: outcome.ErrNotIssued}
	}
	if len(specs) == 0 {
		return results
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deadline <-chan time.Time
	if e.opt.TotalTimeout > 0 {
		timer := time.NewTimer(e.opt.TotalTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	inFlight := e.opt.MaxInFlight
	if inFlight <= 0 || inFlight > len(specs) {
		inFlight = len(specs)
	}
	permits := make(chan struct{}, inFlight)
	limiter := e.opt.LimiterFactory(e.opt.RatePerSecond)

	// Buffered to batch size so a cancelled dispatch can always complete
	// its send without anyone reading it.
	done := make(chan indexedRaw, len(specs))

	issued := make([]atomic.Bool, len(specs))

	// Dispatcher: serializes pacing and the in-flight cap, in tag order.
	go func() {
		for i := range specs {
			if err := limiter.Wait(batchCtx); err != nil {
				return
			}
			select {
			case permits <- struct{}{}:
			case <-batchCtx.Done():
				return
			}
			issued[i].Store(true)
			go func(i int, spec reqspec.Spec) {
				defer func() { <-permits }()
				done <- indexedRaw{idx: i, raw: e.dispatch(batchCtx, spec)}
			}(i, specs[i])
		}
	}()

	completed := make([]bool, len(specs))
	remaining := len(specs)
	expired := false

collect:
	for remaining > 0 {
		select {
		case r := <-done:
			results[r.idx] = r.raw
			completed[r.idx] = true
			remaining--
			e.completed.Add(1)
		case <-deadline:
			expired = true
			break collect
		case <-ctx.Done():
			expired = true
			break collect
		}
	}

	if !expired {
		return results
	}

	cancel()

	// Keep whatever finished in the same instant as the deadline.
	for remaining > 0 {
		select {
		case r := <-done:
			results[r.idx] = r.raw
			completed[r.idx] = true
			remaining--
			e.completed.Add(1)
		default:
			remaining = 0
		}
	}

	switch e.opt.Mode {
	case JoinAll:
		// All-or-nothing: a partial batch is worthless to callers of this
		// mode, so completed results are discarded wholesale.
		for i := range results {
			results[i] = outcome.Raw{Err: outcome.ErrDeadlineExceeded}
		}
	default:
		for i := range results {
			if completed[i] {
				continue
			}
			if issued[i].Load() {
				results[i] = outcome.Raw{Err: outcome.ErrDeadlineExceeded}
			}
			// Never-issued slots keep ErrNotIssued.
		}
	}
	return results
}

// dispatch runs a single spec under its own timeout, independent of the
// aggregate deadline.
func (e *Executor) dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw {
	if spec.Timeout > 0 {
		reqCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
		ctx = reqCtx
	}
	start := time.Now()
	raw := e.opt.Client.Dispatch(ctx, spec)
	if raw.Latency <= 0 {
		raw.Latency = time.Since(start)
	}
	return raw
}
