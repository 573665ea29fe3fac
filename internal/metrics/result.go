package metrics

import (
	"sort"
	"time"
)

// PhaseResult is the aggregated record for one (implementation, strategy,
// batch-size) trial. Successful and Failed always sum to TotalRequests.
type PhaseResult struct {
	Implementation string  `json:"implementation"`
	Strategy       string  `json:"strategy"`
	TotalRequests  int     `json:"total_requests"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	SuccessRate    float64 `json:"success_rate"`
	RequestsPerSec float64 `json:"requests_per_second"`

	Elapsed     time.Duration `json:"-"`
	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P90Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	ElapsedMs     float64 `json:"elapsed_ms"`
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`

	// MemoryDeltaMB is the signed process RSS change across the trial.
	// Negative values (memory reclaimed mid-trial) are preserved. Nil when
	// sampling was unavailable.
	MemoryDeltaMB *float64 `json:"memory_delta_mb,omitempty"`

	FailureReasons map[string]int `json:"failure_reasons,omitempty"`
}

// Rank returns a sorted copy: success rate descending, then throughput
// descending. Throughput alone never decides between phases with different
// success rates; a fast implementation that fails most requests is not a
// winner.
func Rank(results []PhaseResult) []PhaseResult {
	ranked := make([]PhaseResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SuccessRate != ranked[j].SuccessRate {
			return ranked[i].SuccessRate > ranked[j].SuccessRate
		}
		return ranked[i].RequestsPerSec > ranked[j].RequestsPerSec
	})
	return ranked
}
