package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/benchrace/benchrace/internal/outcome"
)

// minElapsed floors the measured wall-clock time so that a degenerate
// sub-millisecond trial cannot produce absurd throughput figures.
const minElapsed = time.Millisecond

// Fold reduces per-request results into a PhaseResult. It runs in a single
// control flow after all concurrency has completed; it is deliberately not
// safe for concurrent use.
type Fold struct {
	hist       *hdrhistogram.Histogram
	successes  int
	failures   int
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	latencies  int
	reasons    map[string]int
}

func NewFold() *Fold {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &Fold{
		hist:    hdrhistogram.New(1, 60_000_000, 3),
		reasons: make(map[string]int),
	}
}

// Observe records one classified result and its measured latency. A zero
// latency (request never ran to completion) is excluded from the latency
// distribution but still counted in the verdict totals.
func (f *Fold) Observe(res outcome.Result, latency time.Duration) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < f.hist.LowestTrackableValue() {
			us = f.hist.LowestTrackableValue()
		}
		if us > f.hist.HighestTrackableValue() {
			us = f.hist.HighestTrackableValue()
		}
		_ = f.hist.RecordValue(us)
		f.sumLatency += latency
		f.latencies++
		if f.minLatency == 0 || latency < f.minLatency {
			f.minLatency = latency
		}
		if latency > f.maxLatency {
			f.maxLatency = latency
		}
	}

	if res.Success {
		f.successes++
	} else {
		f.failures++
		if res.Reason != "" {
			f.reasons[res.Reason]++
		}
	}
}

// Result assembles the final PhaseResult for the trial.
func (f *Fold) Result(implementation, strategy string, elapsed time.Duration, memoryDeltaMB *float64) PhaseResult {
	if elapsed < minElapsed {
		elapsed = minElapsed
	}

	total := f.successes + f.failures
	res := PhaseResult{
		Implementation: implementation,
		Strategy:       strategy,
		TotalRequests:  total,
		Successful:     f.successes,
		Failed:         f.failures,
		Elapsed:        elapsed,
		MinLatency:     f.minLatency,
		MaxLatency:     f.maxLatency,
		MemoryDeltaMB:  memoryDeltaMB,
	}

	if total > 0 {
		res.SuccessRate = 100 * float64(f.successes) / float64(total)
		res.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	if f.latencies > 0 {
		res.MeanLatency = f.sumLatency / time.Duration(f.latencies)
	}
	if f.hist.TotalCount() > 0 {
		res.P50Latency = time.Duration(f.hist.ValueAtQuantile(50)) * time.Microsecond
		res.P90Latency = time.Duration(f.hist.ValueAtQuantile(90)) * time.Microsecond
		res.P99Latency = time.Duration(f.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	res.ElapsedMs = float64(elapsed) / float64(time.Millisecond)
	res.MinLatencyMs = float64(res.MinLatency) / float64(time.Millisecond)
	res.MaxLatencyMs = float64(res.MaxLatency) / float64(time.Millisecond)
	res.MeanLatencyMs = float64(res.MeanLatency) / float64(time.Millisecond)
	res.P50LatencyMs = float64(res.P50Latency) / float64(time.Millisecond)
	res.P90LatencyMs = float64(res.P90Latency) / float64(time.Millisecond)
	res.P99LatencyMs = float64(res.P99Latency) / float64(time.Millisecond)

	if len(f.reasons) > 0 {
		res.FailureReasons = make(map[string]int, len(f.reasons))
		for k, v := range f.reasons {
			res.FailureReasons[k] = v
		}
	}

	return res
}
