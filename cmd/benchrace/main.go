package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"
	"pkt.systems/pslog"

	"github.com/benchrace/benchrace/internal/config"
	"github.com/benchrace/benchrace/internal/executor"
	"github.com/benchrace/benchrace/internal/httpclient"
	"github.com/benchrace/benchrace/internal/orchestrator"
	"github.com/benchrace/benchrace/internal/output"
	"github.com/benchrace/benchrace/internal/phase"
	"github.com/benchrace/benchrace/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := pslog.NewStructured(os.Stderr).With("app", "benchrace")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing.shutdown.failure", "error", err)
		}
	}()

	clientCfg := httpclient.Config{
		ProxyURL:  cfg.ProxyURL,
		ProxyUser: cfg.ProxyUser,
		ProxyPass: cfg.ProxyPass,
	}

	precheck, err := httpclient.NewPooled(clientCfg)
	if err != nil {
		return err
	}

	var observer phase.Observer
	if !cfg.JSONOutput {
		observer = output.NewProgressReporter(progressInterval, os.Stdout)
	}

	var tracer trace.Tracer
	if cfg.Tracing.Enabled() {
		tracer = provider.Tracer()
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Target:          cfg.TargetURL,
		Phases:          cfg.Phases,
		Cooldown:        cfg.Cooldown,
		PrecheckTimeout: cfg.PrecheckTimeout,
		SampleMemory:    cfg.SampleMemory,
		MaxInFlight:     cfg.MaxInFlight,
		RatePerSecond:   cfg.Rate,
		Clients: func(name string) (executor.Client, error) {
			return httpclient.ForName(name, clientCfg)
		},
		Precheck: precheck,
		Logger:   logger,
		Tracer:   tracer,
		Observer: observer,
	})
	if err != nil {
		return err
	}

	report, err := orch.Run(ctx)
	if err != nil {
		// Connectivity failure: report the diagnostic, write nothing.
		return err
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	path, err := output.WriteArtifact(cfg.OutputDir, report)
	if err != nil {
		return err
	}
	logger.Info("report.written", "path", path)

	return nil
}
