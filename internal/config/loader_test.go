package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cooldown != 10*time.Second {
		t.Errorf("cooldown = %v, want 10s", cfg.Cooldown)
	}
	if cfg.PrecheckTimeout != 5*time.Second {
		t.Errorf("precheck timeout = %v, want 5s", cfg.PrecheckTimeout)
	}
	if !cfg.SampleMemory {
		t.Error("memory sampling should default on")
	}
	if len(cfg.Phases) != 4 {
		t.Fatalf("default plan has %d phases, want 4", len(cfg.Phases))
	}
	for i, p := range cfg.Phases {
		if p.Requests != 50 || p.Delay != 500*time.Millisecond {
			t.Errorf("phase %d: requests=%d delay=%v", i, p.Requests, p.Delay)
		}
	}
}

func TestLoadFlagOverrides(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--target", "http://localhost:8080",
		"--requests", "10",
		"--delay", "250ms",
		"--cooldown", "1s",
		"--json",
		"--no-memory",
		"--max-in-flight", "8",
		"--rate", "100",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "http://localhost:8080" {
		t.Errorf("target = %q", cfg.TargetURL)
	}
	if cfg.Cooldown != time.Second {
		t.Errorf("cooldown = %v", cfg.Cooldown)
	}
	if !cfg.JSONOutput {
		t.Error("json output not set")
	}
	if cfg.SampleMemory {
		t.Error("no-memory flag ignored")
	}
	if cfg.MaxInFlight != 8 || cfg.Rate != 100 {
		t.Errorf("max-in-flight=%d rate=%d", cfg.MaxInFlight, cfg.Rate)
	}
	// Overrides apply to every phase of the default plan.
	for i, p := range cfg.Phases {
		if p.Requests != 10 || p.Delay != 250*time.Millisecond {
			t.Errorf("phase %d not overridden: requests=%d delay=%v", i, p.Requests, p.Delay)
		}
	}
}

func TestLoadEnvTarget(t *testing.T) {
	t.Setenv(EnvTargetURL, "http://env-target:9000")

	cfg, err := NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "http://env-target:9000" {
		t.Errorf("target = %q", cfg.TargetURL)
	}
}

func TestLoadEnvTargetLegacy(t *testing.T) {
	t.Setenv(EnvTargetURL, "")
	t.Setenv(EnvTargetURLLegacy, "http://httpbin:80")

	cfg, err := NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "http://httpbin:80" {
		t.Errorf("target = %q", cfg.TargetURL)
	}
}

func TestFlagBeatsEnvTarget(t *testing.T) {
	t.Setenv(EnvTargetURL, "http://env-target:9000")

	cfg, err := NewLoader().Load([]string{"--target", "http://flag-target"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "http://flag-target" {
		t.Errorf("target = %q", cfg.TargetURL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	body := `target: http://filehost:8080
cooldown: 2s
phases:
  - implementation: pooled
    strategy: join_all
    requests: 5
    delay: 100ms
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "http://filehost:8080" {
		t.Errorf("target = %q", cfg.TargetURL)
	}
	if cfg.Cooldown != 2*time.Second {
		t.Errorf("cooldown = %v", cfg.Cooldown)
	}
	if len(cfg.Phases) != 1 {
		t.Fatalf("phases = %d, want the file's plan", len(cfg.Phases))
	}
	p := cfg.Phases[0]
	if p.Implementation != "pooled" || p.Strategy != "join_all" || p.Requests != 5 {
		t.Errorf("phase = %+v", p)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := NewLoader().Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TargetURL: "http://localhost:8080",
			Phases:    DefaultPhases(),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing target", func(c *Config) { c.TargetURL = "" }},
		{"bad scheme", func(c *Config) { c.TargetURL = "ftp://host" }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }},
		{"negative max in flight", func(c *Config) { c.MaxInFlight = -1 }},
		{"negative rate", func(c *Config) { c.Rate = -5 }},
		{"empty plan", func(c *Config) { c.Phases = nil }},
		{"missing implementation", func(c *Config) { c.Phases[0].Implementation = "" }},
		{"zero requests", func(c *Config) { c.Phases[0].Requests = 0 }},
		{"unknown strategy", func(c *Config) { c.Phases[0].Strategy = "race_all" }},
		{"negative delay", func(c *Config) { c.Phases[0].Delay = -time.Millisecond }},
		{"sample rate out of range", func(c *Config) { c.Tracing.SampleRate = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
