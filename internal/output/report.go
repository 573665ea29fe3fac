// Package output renders comparison reports to the console and to disk.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benchrace/benchrace/internal/metrics"
)

// PrintReport outputs a human-readable comparison summary.
func PrintReport(w io.Writer, report metrics.Report) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Run:    %s\n", report.RunID)
	fmt.Fprintf(w, "Target: %s\n", report.Target)

	if len(report.Phases) == 0 {
		fmt.Fprintln(w, "\nNo phases completed.")
		return
	}

	for _, p := range report.Phases {
		fmt.Fprintf(w, "\n%s (%s):\n", p.Implementation, p.Strategy)
		fmt.Fprintf(w, "  Total Requests:  %d\n", p.TotalRequests)
		fmt.Fprintf(w, "  Successful:      %d\n", p.Successful)
		fmt.Fprintf(w, "  Failed:          %d\n", p.Failed)
		fmt.Fprintf(w, "  Success Rate:    %.1f%%\n", p.SuccessRate)
		fmt.Fprintf(w, "  Duration:        %s\n", p.Elapsed)
		fmt.Fprintf(w, "  Requests/sec:    %.2f\n", p.RequestsPerSec)
		fmt.Fprintln(w, "  Latency:")
		fmt.Fprintf(w, "    Min:           %s\n", p.MinLatency)
		fmt.Fprintf(w, "    Max:           %s\n", p.MaxLatency)
		fmt.Fprintf(w, "    Mean:          %s\n", p.MeanLatency)
		fmt.Fprintf(w, "    P50:           %s\n", p.P50Latency)
		fmt.Fprintf(w, "    P90:           %s\n", p.P90Latency)
		fmt.Fprintf(w, "    P99:           %s\n", p.P99Latency)
		if p.MemoryDeltaMB != nil {
			fmt.Fprintf(w, "  Memory Delta:    %+.1f MB\n", *p.MemoryDeltaMB)
		}
		if len(p.FailureReasons) > 0 {
			fmt.Fprintln(w, "  Failures:")
			for _, row := range metrics.FlattenReasonBuckets(p.FailureReasons) {
				fmt.Fprintf(w, "    %s: %d\n", row.Reason, row.Count)
			}
		}
	}

	fmt.Fprintln(w, "\nRanking (success rate, then throughput):")
	for i, p := range report.Ranking {
		fmt.Fprintf(w, "  %d. %s (%s): %.1f%% success, %.2f req/s\n",
			i+1, p.Implementation, p.Strategy, p.SuccessRate, p.RequestsPerSec)
	}
}

// PrintJSONReport outputs the full report as indented JSON.
func PrintJSONReport(w io.Writer, report metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
