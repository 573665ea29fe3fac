// Package executor runs one batch of HTTP requests to completion under an
// aggregate deadline.
//
// The executor dispatches every request of a batch concurrently, bounded by
// an optional in-flight cap and dispatch rate, and collects raw outcomes in
// input order. What happens when the aggregate deadline fires depends on the
// exit policy:
//   - [SelectAll]: completed results are kept, every other slot is marked
//     with the deadline error.
//   - [JoinAll]: the batch only counts if it finishes whole; on deadline the
//     entire batch is discarded and every slot carries the deadline error.
//
// # Basic Usage
//
// Create an executor with options and a client implementation:
//
//	opts := executor.Options{
//		Mode:         executor.SelectAll,
//		TotalTimeout: 5 * time.Second,
//		MaxInFlight:  32,
//		Client:       myClient,
//	}
//	exec := executor.New(opts)
//	raws, err := exec.Run(ctx, specs)
//
// The returned slice always has one entry per spec, in spec order. Requests
// that never left the gate before the deadline carry [outcome.ErrNotIssued];
// issued but unfinished requests carry [outcome.ErrDeadlineExceeded].
//
// # Client Interface
//
// The [Client] interface defines what an executor dispatches:
//
//	type Client interface {
//		Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw
//	}
//
// Implementations settle transport-level failures into payloads rather than
// errors, so an executor can treat any returned Raw uniformly.
//
// # Pacing
//
// RatePerSecond spreads dispatches over time using a token bucket. Zero
// means dispatch as fast as the in-flight cap allows.
package executor
