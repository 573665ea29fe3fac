package metrics_test

import (
	"testing"
	"time"

	"github.com/benchrace/benchrace/internal/metrics"
	"github.com/benchrace/benchrace/internal/outcome"
)

func TestFoldCountsAlwaysSum(t *testing.T) {
	fold := metrics.NewFold()
	for i := 0; i < 7; i++ {
		fold.Observe(outcome.Result{Tag: "t", Success: true}, 10*time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		fold.Observe(outcome.Result{Tag: "t", Success: false, Reason: "deadline exceeded"}, 0)
	}

	res := fold.Result("pooled", "select_all", 2*time.Second, nil)
	if res.Successful+res.Failed != res.TotalRequests {
		t.Fatalf("successful %d + failed %d != total %d", res.Successful, res.Failed, res.TotalRequests)
	}
	if res.TotalRequests != 10 {
		t.Fatalf("total %d, want 10", res.TotalRequests)
	}
	if res.SuccessRate != 70 {
		t.Fatalf("success rate %.2f, want 70", res.SuccessRate)
	}
	if res.RequestsPerSec != 5 {
		t.Fatalf("rps %.2f, want 5", res.RequestsPerSec)
	}
	if res.FailureReasons["deadline exceeded"] != 3 {
		t.Fatalf("failure reasons %v", res.FailureReasons)
	}
}

func TestFoldFloorsDegenerateElapsed(t *testing.T) {
	fold := metrics.NewFold()
	fold.Observe(outcome.Result{Success: true}, 5*time.Microsecond)

	res := fold.Result("pooled", "select_all", 10*time.Microsecond, nil)
	if res.Elapsed != time.Millisecond {
		t.Fatalf("elapsed %s, want floored 1ms", res.Elapsed)
	}
	if res.RequestsPerSec > 1001 {
		t.Fatalf("throughput %f not floored", res.RequestsPerSec)
	}
}

func TestFoldPreservesNegativeMemoryDelta(t *testing.T) {
	fold := metrics.NewFold()
	fold.Observe(outcome.Result{Success: true}, time.Millisecond)

	delta := -12.5
	res := fold.Result("pooled", "select_all", time.Second, &delta)
	if res.MemoryDeltaMB == nil {
		t.Fatal("memory delta dropped")
	}
	if *res.MemoryDeltaMB != -12.5 {
		t.Fatalf("memory delta %.1f, want -12.5 (must not clamp)", *res.MemoryDeltaMB)
	}
}

func TestFoldLatencyDistribution(t *testing.T) {
	fold := metrics.NewFold()
	for i := 1; i <= 100; i++ {
		fold.Observe(outcome.Result{Success: true}, time.Duration(i)*time.Millisecond)
	}

	res := fold.Result("pooled", "select_all", time.Second, nil)
	if res.MinLatency != time.Millisecond {
		t.Errorf("min %s", res.MinLatency)
	}
	if res.MaxLatency != 100*time.Millisecond {
		t.Errorf("max %s", res.MaxLatency)
	}
	if res.P50Latency < 45*time.Millisecond || res.P50Latency > 55*time.Millisecond {
		t.Errorf("p50 %s out of range", res.P50Latency)
	}
	if res.P99Latency < 95*time.Millisecond {
		t.Errorf("p99 %s out of range", res.P99Latency)
	}
	if res.MeanLatency <= 0 {
		t.Errorf("mean %s", res.MeanLatency)
	}
}

func TestRankGatesOnSuccessRateBeforeThroughput(t *testing.T) {
	slowButReliable := metrics.PhaseResult{Implementation: "pooled", SuccessRate: 100, RequestsPerSec: 10}
	fastButBroken := metrics.PhaseResult{Implementation: "basic", SuccessRate: 40, RequestsPerSec: 5000}

	ranked := metrics.Rank([]metrics.PhaseResult{fastButBroken, slowButReliable})
	if ranked[0].Implementation != "pooled" {
		t.Fatalf("ranked %q first; throughput must not outrank success rate", ranked[0].Implementation)
	}
}

func TestRankBreaksTiesByThroughput(t *testing.T) {
	a := metrics.PhaseResult{Implementation: "a", SuccessRate: 100, RequestsPerSec: 10}
	b := metrics.PhaseResult{Implementation: "b", SuccessRate: 100, RequestsPerSec: 90}

	ranked := metrics.Rank([]metrics.PhaseResult{a, b})
	if ranked[0].Implementation != "b" {
		t.Fatalf("ranked %q first, want b (higher throughput at equal success)", ranked[0].Implementation)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	input := []metrics.PhaseResult{
		{Implementation: "a", SuccessRate: 10},
		{Implementation: "b", SuccessRate: 90},
	}
	_ = metrics.Rank(input)
	if input[0].Implementation != "a" {
		t.Fatal("Rank mutated its input")
	}
}

func TestFlattenReasonBuckets(t *testing.T) {
	rows := metrics.FlattenReasonBuckets(map[string]int{
		"deadline exceeded": 4,
		"status 500":        4,
		"status 503":        9,
	})
	if len(rows) != 3 {
		t.Fatalf("rows %d", len(rows))
	}
	if rows[0].Reason != "status 503" {
		t.Errorf("rows[0] %+v", rows[0])
	}
	// Equal counts tie-break alphabetically.
	if rows[1].Reason != "deadline exceeded" || rows[2].Reason != "status 500" {
		t.Errorf("tie-break order: %+v, %+v", rows[1], rows[2])
	}

	if metrics.FlattenReasonBuckets(nil) != nil {
		t.Error("empty input should flatten to nil")
	}
}
