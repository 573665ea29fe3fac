// Package metrics aggregates per-request verdicts into phase results and
// comparison reports.
//
// # Fold
//
// The [Fold] type accumulates one phase's classified outcomes:
//
//	fold := metrics.NewFold()
//	for i, raw := range raws {
//		res := outcome.Classify(specs[i].Tag, raw)
//		fold.Observe(res, raw.Latency)
//	}
//	result := fold.Result("pooled", "select_all", elapsed, memDelta)
//
// A Fold is not safe for concurrent use; the executor hands back a settled
// slice, so folding happens on one goroutine after the batch ends.
//
// # Phase Results
//
// [PhaseResult] is the aggregate record for one trial: counts, success
// rate, throughput, latency percentiles from an HDR histogram, the signed
// memory delta, and a failure-reason breakdown. Successful and Failed
// always sum to TotalRequests.
//
// # Ranking
//
// [Rank] orders results by success rate first and throughput second, so a
// fast implementation that fails most of its requests never outranks a
// slower one that succeeds.
package metrics
