package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benchrace/benchrace/internal/config"
	"github.com/benchrace/benchrace/internal/executor"
	"github.com/benchrace/benchrace/internal/orchestrator"
	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// verdictClient answers every dispatch with a fixed status.
type verdictClient struct {
	status int
}

func (c *verdictClient) Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw {
	payload := fmt.Sprintf(`{"http_status":%d}`, c.status)
	return outcome.Raw{Payload: []byte(payload), Latency: time.Millisecond}
}

// panicClient models a broken implementation.
type panicClient struct{}

func (panicClient) Dispatch(context.Context, reqspec.Spec) outcome.Raw {
	panic("broken transport")
}

func plan(entries ...[2]string) []config.Phase {
	phases := make([]config.Phase, 0, len(entries))
	for _, e := range entries {
		phases = append(phases, config.Phase{
			Implementation: e[0],
			Strategy:       e[1],
			Requests:       4,
			TotalTimeout:   5 * time.Second,
			RequestTimeout: time.Second,
		})
	}
	return phases
}

func factory(clients map[string]executor.Client) orchestrator.ClientFactory {
	return func(name string) (executor.Client, error) {
		c, ok := clients[name]
		if !ok {
			return nil, fmt.Errorf("unknown client implementation %q", name)
		}
		return c, nil
	}
}

func TestPrecheckFailureAbortsWithEmptyReport(t *testing.T) {
	orch, err := orchestrator.New(orchestrator.Options{
		Target:   "http://target",
		Phases:   plan([2]string{"ok", "select_all"}),
		Clients:  factory(map[string]executor.Client{"ok": &verdictClient{status: 200}}),
		Precheck: &verdictClient{status: 503},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	report, err := orch.Run(context.Background())
	if !errors.Is(err, orchestrator.ErrPrecheckFailed) {
		t.Fatalf("expected ErrPrecheckFailed, got %v", err)
	}
	if len(report.Phases) != 0 {
		t.Fatalf("expected empty report, got %d phases", len(report.Phases))
	}
	if report.RunID == "" {
		t.Fatal("empty report still needs a run id")
	}
}

func TestPhaseFailuresAreRecordedNotPropagated(t *testing.T) {
	clients := map[string]executor.Client{
		"good":   &verdictClient{status: 200},
		"broken": panicClient{},
	}
	orch, err := orchestrator.New(orchestrator.Options{
		Target: "http://target",
		Phases: plan(
			[2]string{"good", "select_all"},
			[2]string{"absent", "select_all"},
			[2]string{"broken", "select_all"},
			[2]string{"good", "join_all"},
		),
		Clients:  factory(clients),
		Precheck: &verdictClient{status: 200},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	report, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The absent and broken phases are omitted; the rest proceed.
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases in report, got %d", len(report.Phases))
	}
	if report.Phases[0].Strategy != "select_all" || report.Phases[1].Strategy != "join_all" {
		t.Fatalf("phase order: %q, %q", report.Phases[0].Strategy, report.Phases[1].Strategy)
	}
	for _, p := range report.Phases {
		if p.Successful+p.Failed != p.TotalRequests {
			t.Fatalf("phase %s/%s: %d+%d != %d", p.Implementation, p.Strategy, p.Successful, p.Failed, p.TotalRequests)
		}
	}
	if len(report.Ranking) != len(report.Phases) {
		t.Fatalf("ranking has %d entries, phases %d", len(report.Ranking), len(report.Phases))
	}
}

func TestCooldownSeparatesPhases(t *testing.T) {
	orch, err := orchestrator.New(orchestrator.Options{
		Target: "http://target",
		Phases: plan(
			[2]string{"ok", "select_all"},
			[2]string{"ok", "select_all"},
			[2]string{"ok", "select_all"},
		),
		Cooldown: 60 * time.Millisecond,
		Clients:  factory(map[string]executor.Client{"ok": &verdictClient{status: 200}}),
		Precheck: &verdictClient{status: 200},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	start := time.Now()
	report, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Two gaps between three phases.
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("run finished in %s; cooldown barriers skipped", elapsed)
	}
	if len(report.Phases) != 3 {
		t.Fatalf("phases %d", len(report.Phases))
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := orchestrator.New(orchestrator.Options{Precheck: &verdictClient{}}); err == nil {
		t.Fatal("expected error without client factory")
	}
	if _, err := orchestrator.New(orchestrator.Options{Clients: factory(nil)}); err == nil {
		t.Fatal("expected error without precheck client")
	}
}
