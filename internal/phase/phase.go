// Package phase runs one timed (implementation, strategy, batch-size) trial
// and reduces it to a single comparable result record.
package phase

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/benchrace/benchrace/internal/executor"
	"github.com/benchrace/benchrace/internal/metrics"
	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// Descriptor names one phase of the comparison.
type Descriptor struct {
	Implementation string        // implementation label, e.g. "pooled"
	Client         executor.Client
	Strategy       executor.Mode
	Requests       int
	Delay          time.Duration // target-side response delay per request
	RequestTimeout time.Duration // per-request timeout (0 derives from Delay)
	TotalTimeout   time.Duration // aggregate deadline (0 derives from Delay)
	MaxInFlight    int
	RatePerSecond  int
}

func (d *Descriptor) normalize() {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = d.Delay + 2*time.Second
	}
	if d.TotalTimeout <= 0 {
		d.TotalTimeout = d.Delay + 5*time.Second
	}
}

// Name renders the phase label used in tags, logs and reports.
func (d Descriptor) Name() string {
	return fmt.Sprintf("%s-%s", d.Implementation, d.Strategy)
}

// Observer is notified around a trial; used for live progress reporting.
type Observer interface {
	PhaseStarted(name string, total int, completed func() int64)
	PhaseFinished(name string)
}

// Runner executes phases against a single target.
type Runner struct {
	Target       string   // target base URL
	SampleMemory bool     // record process RSS delta across the trial
	Observer     Observer // optional
}

// Run performs one timed trial: build the batch, dispatch it under the
// descriptor's strategy, classify every outcome, and fold the verdicts into
// a PhaseResult. The wall clock covers dispatch only, never classification.
func (r *Runner) Run(ctx context.Context, d Descriptor) (metrics.PhaseResult, error) {
	d.normalize()
	if d.Client == nil {
		return metrics.PhaseResult{}, fmt.Errorf("phase %s: no client", d.Name())
	}

	url := fmt.Sprintf("%s/delay/%g", r.Target, d.Delay.Seconds())
	specs, err := reqspec.Build(d.Name(), d.Requests, url, "GET", d.RequestTimeout)
	if err != nil {
		return metrics.PhaseResult{}, fmt.Errorf("phase %s: %w", d.Name(), err)
	}

	exec := executor.New(executor.Options{
		Mode:          d.Strategy,
		TotalTimeout:  d.TotalTimeout,
		MaxInFlight:   d.MaxInFlight,
		RatePerSecond: d.RatePerSecond,
		Client:        d.Client,
	})

	if r.Observer != nil {
		r.Observer.PhaseStarted(d.Name(), len(specs), exec.Completed)
		defer r.Observer.PhaseFinished(d.Name())
	}

	before, beforeOK := r.sampleRSS()

	start := time.Now()
	raws := exec.Run(ctx, specs)
	elapsed := time.Since(start)

	after, afterOK := r.sampleRSS()

	fold := metrics.NewFold()
	for i, raw := range raws {
		fold.Observe(outcome.Classify(specs[i].Tag, raw), raw.Latency)
	}

	var memDelta *float64
	if beforeOK && afterOK {
		delta := after - before // signed; negative means memory was reclaimed
		memDelta = &delta
	}

	return fold.Result(d.Implementation, string(d.Strategy), elapsed, memDelta), nil
}

// sampleRSS reads the current process RSS in MB. Sampling failures disable
// the memory delta rather than failing the trial.
func (r *Runner) sampleRSS() (float64, bool) {
	if !r.SampleMemory {
		return 0, false
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0, false
	}
	return float64(info.RSS) / 1024 / 1024, true
}
