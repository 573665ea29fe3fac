// Package orchestrator sequences benchmark phases across competing client
// implementations and assembles the comparison report.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"pkt.systems/pslog"

	"github.com/benchrace/benchrace/internal/config"
	"github.com/benchrace/benchrace/internal/cooldown"
	"github.com/benchrace/benchrace/internal/executor"
	"github.com/benchrace/benchrace/internal/metrics"
	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/phase"
	"github.com/benchrace/benchrace/internal/reqspec"
	"github.com/benchrace/benchrace/internal/tracing"
)

// ErrPrecheckFailed aborts the whole run: no target, no comparison.
var ErrPrecheckFailed = errors.New("connectivity pre-check failed")

// ClientFactory resolves an implementation name to a client under test.
type ClientFactory func(name string) (executor.Client, error)

// Options configure the Orchestrator.
type Options struct {
	Target          string
	Phases          []config.Phase
	Cooldown        time.Duration
	PrecheckTimeout time.Duration
	SampleMemory    bool
	MaxInFlight     int
	RatePerSecond   int
	Clients         ClientFactory   // required
	Precheck        executor.Client // client used for the connectivity check (required)
	Logger          pslog.Logger
	Tracer          trace.Tracer
	Observer        phase.Observer
}

func (o *Options) normalize() {
	if o.PrecheckTimeout <= 0 {
		o.PrecheckTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = pslog.NoopLogger()
	}
}

// Orchestrator runs the comparison. Phases never overlap; the only state
// shared across them is the append-only result list owned here.
type Orchestrator struct {
	opt     Options
	runner  *phase.Runner
	barrier cooldown.Barrier
}

func New(opt Options) (*Orchestrator, error) {
	opt.normalize()
	if opt.Clients == nil {
		return nil, errors.New("orchestrator: client factory is required")
	}
	if opt.Precheck == nil {
		return nil, errors.New("orchestrator: precheck client is required")
	}
	return &Orchestrator{
		opt: opt,
		runner: &phase.Runner{
			Target:       opt.Target,
			SampleMemory: opt.SampleMemory,
			Observer:     opt.Observer,
		},
		barrier: cooldown.Barrier{Duration: opt.Cooldown},
	}, nil
}

// Run executes the comparison end to end. A failed pre-check returns an
// empty report and ErrPrecheckFailed. Individual phase failures are logged
// and omitted from the report; they never abort the remaining phases.
func (o *Orchestrator) Run(ctx context.Context) (metrics.Report, error) {
	runID := ulid.Make().String()
	started := time.Now()
	logger := o.opt.Logger.With("run_id", runID)

	if err := o.precheck(ctx); err != nil {
		logger.Error("precheck.failed", "target", o.opt.Target, "error", err)
		return metrics.BuildReport(runID, o.opt.Target, started, nil), err
	}
	logger.Info("precheck.ok", "target", o.opt.Target)

	var results []metrics.PhaseResult
	for i, pc := range o.opt.Phases {
		if i > 0 {
			logger.Debug("cooldown.start", "duration", o.barrier.Duration)
			o.barrier.Wait()
		}

		res, err := o.runPhase(ctx, pc)
		if err != nil {
			logger.Warn("phase.failed",
				"implementation", pc.Implementation,
				"strategy", pc.Strategy,
				"error", err)
			continue
		}
		logger.Info("phase.completed",
			"implementation", res.Implementation,
			"strategy", res.Strategy,
			"successful", res.Successful,
			"failed", res.Failed,
			"rps", res.RequestsPerSec)
		results = append(results, res)
	}

	return metrics.BuildReport(runID, o.opt.Target, started, results), nil
}

// runPhase executes one phase, converting panics from a broken
// implementation into recoverable phase errors.
func (o *Orchestrator) runPhase(ctx context.Context, pc config.Phase) (res metrics.PhaseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("phase %s-%s panicked: %v", pc.Implementation, pc.Strategy, r)
		}
	}()

	client, err := o.opt.Clients(pc.Implementation)
	if err != nil {
		return metrics.PhaseResult{}, err
	}
	if o.opt.Tracer != nil {
		client = tracing.WrapClient(client, o.opt.Tracer)
	}

	d := phase.Descriptor{
		Implementation: pc.Implementation,
		Client:         client,
		Strategy:       executor.ParseMode(pc.Strategy),
		Requests:       pc.Requests,
		Delay:          pc.Delay,
		RequestTimeout: pc.RequestTimeout,
		TotalTimeout:   pc.TotalTimeout,
		MaxInFlight:    o.opt.MaxInFlight,
		RatePerSecond:  o.opt.RatePerSecond,
	}

	if o.opt.Tracer == nil {
		return o.runner.Run(ctx, d)
	}

	spanCtx, span := tracing.StartPhaseSpan(ctx, o.opt.Tracer, pc.Implementation, string(d.Strategy), pc.Requests)
	res, err = o.runner.Run(spanCtx, d)
	tracing.EndSpan(span, err,
		attribute.Int("benchrace.successful", res.Successful),
		attribute.Int("benchrace.failed", res.Failed),
	)
	return res, err
}

// precheck issues one short-deadline request against the target's trivially
// healthy endpoint and classifies it like any other outcome.
func (o *Orchestrator) precheck(ctx context.Context) error {
	spec := reqspec.Spec{
		URL:     o.opt.Target + "/status/200",
		Method:  http.MethodGet,
		Timeout: o.opt.PrecheckTimeout,
		Tag:     "precheck",
	}

	ctx, cancel := context.WithTimeout(ctx, o.opt.PrecheckTimeout)
	defer cancel()

	raw := o.opt.Precheck.Dispatch(ctx, spec)
	res := outcome.Classify(spec.Tag, raw)
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrPrecheckFailed, res.Reason)
	}
	return nil
}
